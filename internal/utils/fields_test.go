package utils

import (
	"testing"
)

func TestFieldsInt(t *testing.T) {
	f, err := DecodeFields([]byte(`{"a": 3, "b": 2.7, "c": "12", "d": true, "e": null, "f": "x", "g": 1e12}`))
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}

	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"a", 3, true},
		{"b", 2, true},
		{"c", 12, true},
		{"d", 1, true},
		{"e", 0, false},
		{"f", 0, false},
		{"g", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := f.Int(tt.key)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Int(%q) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFieldsBool(t *testing.T) {
	f, err := DecodeFields([]byte(`{"n1": 1, "n0": 0, "bt": true, "bf": false, "s": "yes", "bad": "maybe"}`))
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}

	tests := []struct {
		key    string
		want   bool
		wantOK bool
	}{
		{"n1", true, true},
		{"n0", false, true},
		{"bt", true, true},
		{"bf", false, true},
		{"s", true, true},
		{"bad", false, false},
		{"missing", false, false},
	}
	for _, tt := range tests {
		got, ok := f.Bool(tt.key)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Bool(%q) = (%v, %v), want (%v, %v)", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFieldsString(t *testing.T) {
	f, err := DecodeFields([]byte(`{"s": "hi", "n": 5, "z": null}`))
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if got, ok := f.String("s"); !ok || got != "hi" {
		t.Errorf("String(s) = (%q, %v)", got, ok)
	}
	if got, ok := f.String("n"); !ok || got != "5" {
		t.Errorf("String(n) = (%q, %v)", got, ok)
	}
	if _, ok := f.String("z"); ok {
		t.Error("String(z) should report absent for null")
	}
	if f.Has("z") {
		t.Error("Has(z) should be false for null")
	}
}

func TestDecodeFieldsRejectsNonObject(t *testing.T) {
	for _, in := range []string{`[1,2]`, `"x"`, `{`, ``} {
		if _, err := DecodeFields([]byte(in)); err == nil {
			t.Errorf("DecodeFields(%q) expected error", in)
		}
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/tasks/0/title", "tasks[0].title"},
		{"#/tasks/12/status", "tasks[12].status"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}
	for _, tt := range tests {
		if got := JSONPointerToPath(tt.in); got != tt.want {
			t.Errorf("JSONPointerToPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFieldsInt64(t *testing.T) {
	f, err := DecodeFields([]byte(`{"epoch": 4102444800, "f": 1.5e9, "s": "17", "b": true}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := f.Int64("epoch"); !ok || got != 4102444800 {
		t.Errorf("Int64(epoch) = (%d, %v)", got, ok)
	}
	if got, ok := f.Int64("f"); !ok || got != 1500000000 {
		t.Errorf("Int64(f) = (%d, %v)", got, ok)
	}
	if got, ok := f.Int64("s"); !ok || got != 17 {
		t.Errorf("Int64(s) = (%d, %v)", got, ok)
	}
	if _, ok := f.Int64("b"); ok {
		t.Error("Int64(b) should reject booleans")
	}
}
