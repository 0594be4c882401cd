package entity

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NotAvailable is displayed in place of missing values.
const NotAvailable = "N/A"

// RawRecord is one backend JSON object, of loosely specified shape.
type RawRecord map[string]interface{}

// Lookup resolves key in rec; dotted keys walk nested objects ("hostel.name").
func (rec RawRecord) Lookup(key string) (interface{}, bool) {
	if rec == nil || key == "" {
		return nil, false
	}
	if v, ok := rec[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur interface{} = map[string]interface{}(rec)
	for _, part := range strings.Split(key, ".") {
		switch obj := cur.(type) {
		case map[string]interface{}:
			v, ok := obj[part]
			if !ok {
				return nil, false
			}
			cur = v
		case RawRecord:
			v, ok := obj[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// First returns the first value among keys that is neither missing, nil nor an empty string.
func (rec RawRecord) First(keys ...string) (interface{}, bool) {
	for _, key := range keys {
		v, ok := rec.Lookup(key)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// FirstString is First, stringified; non-displayable values (objects, arrays) are skipped.
func (rec RawRecord) FirstString(keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := rec.Lookup(key)
		if !ok {
			continue
		}
		if s, ok := Stringify(v); ok {
			return s, true
		}
	}
	return "", false
}

// Stringify renders scalar JSON values as text.
// ok is false for nil, empty strings, objects and arrays.
func Stringify(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), val != ""
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return formatNumber(val), true
	case float32:
		return formatNumber(float64(val)), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	default:
		return "", false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toFloat reports the numeric value of v, if v is a number.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
