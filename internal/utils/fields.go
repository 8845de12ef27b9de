// Package utils provides shared utility functions used across multiple packages.
package utils

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Fields is a decoded JSON object whose values are read leniently.
// Numbers are expected as json.Number (decoder UseNumber) or float64.
type Fields map[string]any

// Has reports whether key is present with a non-null value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// String returns the value for key rendered as text.
// Numbers and booleans are formatted; null or absent keys report false.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Int returns the value for key as an integer.
// Fractional numbers are truncated. Numeric strings are accepted.
func (f Fields) Int(key string) (int, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if fl, err := t.Float64(); err == nil {
			return floatToInt(fl)
		}
	case float64:
		return floatToInt(t)
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Int64 returns the value for key as a 64-bit integer, for values such as
// Unix timestamps.
func (f Fields) Int64(key string) (int64, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if fl, err := t.Float64(); err == nil && !math.IsNaN(fl) && math.Abs(fl) < math.MaxInt64 {
			return int64(fl), true
		}
	case float64:
		if !math.IsNaN(t) && math.Abs(t) < math.MaxInt64 {
			return int64(t), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Bool returns the value for key as a flag.
// Non-zero numbers and "true"/"1"/"yes" strings are true.
func (f Fields) Bool(key string) (bool, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off", "":
			return false, true
		}
		return false, false
	}
	i, ok := f.Int(key)
	if !ok {
		return false, false
	}
	return i != 0, true
}

func floatToInt(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

// DecodeFields parses a single JSON object with json.Number preservation.
func DecodeFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var f Fields
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return f, nil
}

// NormalizeKeyword lowercases and trims a keyword for comparison.
func NormalizeKeyword(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
