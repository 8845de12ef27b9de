package tasks

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidateBlob(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantValid bool
		wantPath  string
	}{
		{"valid", `{"tasks":[{"title":"a","month":"Jun","day":5,"time":"","priority":1,"status":"Done","notes":""}]}`, true, ""},
		{"empty list", `{"tasks":[]}`, true, ""},
		{"legacy status", `{"tasks":[{"title":"a","status":"NULL"}]}`, true, ""},
		{"bool priority", `{"tasks":[{"title":"a","priority":true}]}`, true, ""},
		{"bare array", `[{"title":"a"}]`, true, ""},
		{"missing tasks", `{}`, false, ""},
		{"bad status", `{"tasks":[{"title":"a","status":"Blocked"}]}`, false, "tasks[0].status"},
		{"day out of range", `{"tasks":[{"title":"a","day":40}]}`, false, "tasks[0].day"},
		{"missing title", `{"tasks":[{"day":1}]}`, false, "tasks[0]"},
		{"not json", `{`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateBlob([]byte(tt.in))
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid: got %v, want %v (errors %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if tt.wantPath == "" {
				return
			}
			found := false
			for _, err := range res.Errors {
				var ve *ValidationError
				if errors.As(err, &ve) && ve.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no error at %s: %v", tt.wantPath, res.Errors)
			}
		})
	}
}

func TestValidateBlobCapacityWarning(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"tasks":[`)
	for i := 0; i < MaxTasks+1; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"title":"t%d"}`, i)
	}
	b.WriteString(`]}`)

	res := ValidateBlob([]byte(b.String()))
	if !res.Valid {
		t.Fatalf("expected valid, got %v", res.Errors)
	}
	if res.Count != MaxTasks+1 {
		t.Errorf("Count: got %d", res.Count)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected capacity warning")
	}
}

func TestSchemaJSONIsCopy(t *testing.T) {
	a := SchemaJSON()
	a[0] = 'x'
	if SchemaJSON()[0] == 'x' {
		t.Error("SchemaJSON must return a copy")
	}
}
