package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is one row of fetched data: a column -> scalar mapping that keeps
// the column order it was decoded (or built) with.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from alternating key/value pairs.
// Example: NewRecord("pays", "France", "annee", 2015.0)
func NewRecord(pairs ...any) Record {
	r := Record{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		r.Set(key, pairs[i+1])
	}
	return r
}

// Set assigns a value, appending the key if it is new.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the column names in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the raw value for a column.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the column exists.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.keys)
}

// Number returns the value as float64 when it is numeric.
func (r Record) Number(key string) (float64, bool) {
	return AsNumber(r.values[key])
}

// String formats a column value for display.
func (r Record) String(key string) string {
	return FormatValue(r.values[key])
}

// IsNumeric reports whether v is a JSON-style number.
func IsNumeric(v any) bool {
	_, ok := AsNumber(v)
	return ok
}

// IsString reports whether v is a string.
func IsString(v any) bool {
	_, ok := v.(string)
	return ok
}

// AsNumber converts the numeric kinds produced by JSON decoding and SQLite
// scanning to float64. Strings are never coerced.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// FormatValue renders a scalar the way a table cell shows it.
// nil renders as an empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	*r = Record{values: make(map[string]any)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected record key %v", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to read value for %q: %w", key, err)
		}
		r.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to close record: %w", err)
	}
	return nil
}

// MarshalJSON encodes the record with its columns in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		value := r.values[key]
		if b, ok := value.([]byte); ok {
			value = string(b)
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Records is the ordered result of one query.
type Records []Record

// Columns returns the first record's keys. All records are assumed to share
// them; later records are not checked.
func (rs Records) Columns() []string {
	if len(rs) == 0 {
		return nil
	}
	return rs[0].Keys()
}

// DataResponse is the body returned by GET /data/{source}.
type DataResponse struct {
	Source string  `json:"source"`
	Count  int     `json:"count"`
	Data   Records `json:"data"`
}
