package model

import "strings"

// Record is a single student row of a data file. Column names keep the
// header order; lookups are case-insensitive.
type Record struct {
	columns []string
	values  map[string]string
}

// NewRecord builds a record from parallel header and value slices
func NewRecord(headers, values []string) Record {
	r := Record{
		columns: make([]string, 0, len(headers)),
		values:  make(map[string]string, len(headers)),
	}
	for i, h := range headers {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.Set(h, v)
	}
	return r
}

// Set stores a value, keeping the first position of an already known column
func (r *Record) Set(column, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	key := strings.ToLower(column)
	if _, ok := r.values[key]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[key] = value
}

// Lookup returns the value of a column and whether the column exists
func (r Record) Lookup(column string) (string, bool) {
	v, ok := r.values[strings.ToLower(column)]
	return v, ok
}

// Get returns the value of a column or an empty string
func (r Record) Get(column string) string {
	return r.values[strings.ToLower(column)]
}

// GetOr returns the value of a column, or def when the column is absent
func (r Record) GetOr(column, def string) string {
	if v, ok := r.Lookup(column); ok {
		return v
	}
	return def
}

// Columns returns the column names in header order
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Lower returns all values keyed by lower-case column name
func (r Record) Lower() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Len returns the number of columns
func (r Record) Len() int {
	return len(r.columns)
}
