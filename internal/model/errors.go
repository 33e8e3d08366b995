package model

import "fmt"

// ErrorKind classifies a validation error
type ErrorKind string

const (
	KindMissingFile     ErrorKind = "missing_file"     // fatal for the run
	KindRead            ErrorKind = "read"             // fatal for the file
	KindHeader          ErrorKind = "header"           // fatal for the file
	KindDuplicateHeader ErrorKind = "duplicate_header" // fatal for the file
	KindRequiredField   ErrorKind = "required_field"
	KindFormat          ErrorKind = "format"
	KindDuplicateKey    ErrorKind = "duplicate_key"
	KindReference       ErrorKind = "reference"
)

// FileFatal reports whether errors of this kind exclude the whole file
func (k ErrorKind) FileFatal() bool {
	switch k {
	case KindMissingFile, KindRead, KindHeader, KindDuplicateHeader:
		return true
	}
	return false
}

// ValidationError is one finding, attributed to a file line
type ValidationError struct {
	File    string    `json:"file"`
	Line    int       `json:"line"`
	Field   string    `json:"field"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// RowErrors groups errors by line for a single file
type RowErrors map[int][]ValidationError

// Add records errs under their own line numbers
func (m RowErrors) Add(errs ...ValidationError) {
	for _, e := range errs {
		m[e.Line] = append(m[e.Line], e)
	}
}

// Invalid reports whether line already carries an error
func (m RowErrors) Invalid(line int) bool {
	return len(m[line]) > 0
}

// HasField reports whether line already carries an error on field
func (m RowErrors) HasField(line int, field string) bool {
	for _, e := range m[line] {
		if e.Field == field {
			return true
		}
	}
	return false
}
