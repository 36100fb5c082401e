package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Identifying fields address a record for updates and are never editable.
const (
	FieldState = "state"
	FieldDate  = "date"
)

// Defaults for the view
const (
	DefaultPageSize = "100"
)

// IsIdentifying reports whether field is one of the record's address fields.
func IsIdentifying(field string) bool {
	return field == FieldState || field == FieldDate
}

// Request types

// PageRequest asks the stats service for one page of records.
// PageSize is the raw text typed into the page size input; it is sent as-is.
type PageRequest struct {
	Page     int    `json:"page"`
	PageSize string `json:"page_size"`
}

// PatchRequest sets one field on the record identified by (State, Date).
type PatchRequest struct {
	State string `json:"state"`
	Date  string `json:"date"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// Body returns the JSON body sent to the update endpoint: {"<field>": "<value>"}.
func (p PatchRequest) Body() map[string]string {
	return map[string]string{p.Field: p.Value}
}

// Domain types

// Record is one row of tabular data keyed by field name. Unlike a plain map
// it remembers the order in which fields arrived, which is the column order
// of the grid.
type Record struct {
	keys   []string
	values map[string]any
}

// Field is a single name/value pair used to build records.
type Field struct {
	Name  string
	Value any
}

// NewRecord builds a record from fields in order. A repeated name keeps its
// first position and its last value.
func NewRecord(fields ...Field) Record {
	r := Record{values: make(map[string]any, len(fields))}
	for _, f := range fields {
		r.set(f.Name, f.Value)
	}
	return r
}

func (r *Record) set(name string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

// Keys returns the field names in arrival order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.keys) }

// Get returns the value of a field and whether it was present.
func (r Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Text returns the plain text form of a field, or "" when absent or null.
func (r Record) Text(name string) string {
	v, ok := r.values[name]
	if !ok || v == nil {
		return ""
	}
	return formatValue(v)
}

// UnmarshalJSON decodes a JSON object while keeping the key order.
// Numbers are kept as json.Number so they render exactly as received.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("record must be a JSON object")
	}

	out := Record{values: map[string]any{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected record key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		out.set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

// MarshalJSON encodes the record with its fields in arrival order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DisplayValue is the text shown in an editable cell. Absent and falsy
// values (null, false, zero, empty string) show as "0".
func DisplayValue(v any, present bool) string {
	if !present || isFalsy(v) {
		return "0"
	}
	return formatValue(v)
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case float64:
		return x == 0
	case int:
		return x == 0
	case int64:
		return x == 0
	}
	return false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return formatNumber(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case nil:
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// formatNumber prints n the way the service's numbers display in a browser:
// 1.50 as 1.5 and 1e3 as 1000. Integers beyond float64 precision keep the
// digits they were sent with.
func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) >= 1<<53 && !strings.ContainsAny(n.String(), ".eE") {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Response types

// GridSnapshot is the JSON view of one session's grid state.
type GridSnapshot struct {
	Page          int        `json:"page"`
	PageSize      string     `json:"page_size"`
	Generation    uint64     `json:"generation"`
	Fetching      bool       `json:"fetching"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
	Records       []Record   `json:"records"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
