package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Row is one parsed data record. Values are positional against the file header.
type Row struct {
	Line   int      // 1-based line where the record starts (header = 1)
	Header []string // shared with the owning File, never modified
	Values []string
}

// Get returns the raw value of field, or "" when the field is absent
func (r Row) Get(field string) string {
	for i, h := range r.Header {
		if h == field {
			if i < len(r.Values) {
				return r.Values[i]
			}
			return ""
		}
	}
	return ""
}

// Fields returns the row as an ordered field list for serialization
func (r Row) Fields() OrderedFields {
	out := make(OrderedFields, 0, len(r.Header))
	for i, h := range r.Header {
		v := ""
		if i < len(r.Values) {
			v = r.Values[i]
		}
		out = append(out, Field{Name: h, Value: v})
	}
	// Extra cells on ragged rows keep their position under a synthetic name
	for i := len(r.Header); i < len(r.Values); i++ {
		out = append(out, Field{Name: extraColumnName(i), Value: r.Values[i]})
	}
	return out
}

func extraColumnName(i int) string {
	return "_column" + strconv.Itoa(i+1)
}

// Field is one named value
type Field struct {
	Name  string
	Value string
}

// OrderedFields serializes as a JSON object preserving column order
type OrderedFields []Field

// MarshalJSON writes the fields as an object in column order
func (f OrderedFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fld := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(fld.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(fld.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// File is one parsed CSV file
type File struct {
	Name   string
	Path   string
	Header []string
	Rows   []Row
}

// Dataset is the snapshot of every file loaded for a run
type Dataset struct {
	Dir     string
	Files   map[string]*File
	Skipped []string // optional files that were absent

	// ReadErrors holds files that exist but could not be parsed
	ReadErrors map[string]error
}

// Has reports whether name was loaded
func (d *Dataset) Has(name string) bool {
	_, ok := d.Files[name]
	return ok
}

// IsSkipped reports whether name was an absent optional file
func (d *Dataset) IsSkipped(name string) bool {
	for _, s := range d.Skipped {
		if s == name {
			return true
		}
	}
	return false
}
