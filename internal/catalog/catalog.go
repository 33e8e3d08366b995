// Package catalog holds the static schema of the roster interchange: which
// files exist, the headers each file may carry, the fields that must be
// non-empty, the format each field must satisfy, and the foreign keys that
// link one file to another.
//
// Everything in this package is read-only after init. Phases running in
// parallel share the same *Catalog without locking.
package catalog

import "fmt"

// Logical file names
const (
	Orgs             = "orgs.csv"
	Users            = "users.csv"
	Roles            = "roles.csv"
	Classes          = "classes.csv"
	Enrollments      = "enrollments.csv"
	AcademicSessions = "academicSessions.csv"
	Courses          = "courses.csv"
)

// KeyField is the primary key column shared by every keyed file
const KeyField = "sourcedId"

// Variant names
const (
	VariantCanonical = "canonical"
	VariantLegacy    = "legacy"
	VariantSDSV21    = "sds-v2.1"
)

// Format classifies the value check applied to a non-empty field
type Format string

const (
	FormatNone    Format = ""
	FormatEmail   Format = "email"
	FormatPhone   Format = "phone"
	FormatDate    Format = "date"
	FormatBoolean Format = "boolean"
)

// Variant is one accepted header layout for a file
type Variant struct {
	Name     string
	Header   []string
	Required []string
}

// HasField reports whether the variant's header contains field
func (v Variant) HasField(field string) bool {
	for _, h := range v.Header {
		if h == field {
			return true
		}
	}
	return false
}

// IsRequired reports whether field must be non-empty under this variant
func (v Variant) IsRequired(field string) bool {
	for _, r := range v.Required {
		if r == field {
			return true
		}
	}
	return false
}

// Keyed reports whether rows under this variant carry a sourcedId
func (v Variant) Keyed() bool {
	return v.HasField(KeyField)
}

// ReferenceRule is a foreign key from one file's field into another file's key
type ReferenceRule struct {
	SourceFile  string `json:"sourceFile"`
	SourceField string `json:"sourceField"`
	TargetFile  string `json:"targetFile"`
	TargetField string `json:"targetField"`
	Optional    bool   `json:"optional"`
}

func (r ReferenceRule) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", r.SourceFile, r.SourceField, r.TargetFile, r.TargetField)
}

// FileSpec describes a single logical file
type FileSpec struct {
	Name     string
	Required bool
	Variants []Variant // first entry is canonical
	Formats  map[string]Format
	Rules    []ReferenceRule
}

// Canonical returns the primary header variant
func (s *FileSpec) Canonical() Variant {
	return s.Variants[0]
}

// FormatOf returns the format check for field, FormatNone if unchecked
func (s *FileSpec) FormatOf(field string) Format {
	return s.Formats[field]
}

// Catalog is the registry of file specs in processing order
type Catalog struct {
	specs []*FileSpec
	index map[string]*FileSpec
}

// New builds a catalog from specs. Processing order follows the argument order.
func New(specs ...*FileSpec) *Catalog {
	c := &Catalog{
		specs: specs,
		index: make(map[string]*FileSpec, len(specs)),
	}
	for _, s := range specs {
		c.index[s.Name] = s
	}
	return c
}

// Lookup returns the spec for a logical file name
func (c *Catalog) Lookup(name string) (*FileSpec, bool) {
	s, ok := c.index[name]
	return s, ok
}

// Files returns the specs in processing order
func (c *Catalog) Files() []*FileSpec {
	return c.specs
}

// Names returns the logical file names in processing order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.specs))
	for i, s := range c.specs {
		names[i] = s.Name
	}
	return names
}

// Required returns the names of files that must be present
func (c *Catalog) Required() []string {
	var names []string
	for _, s := range c.specs {
		if s.Required {
			names = append(names, s.Name)
		}
	}
	return names
}

// Rules returns every reference rule, grouped by source file in processing order
func (c *Catalog) Rules() []ReferenceRule {
	var rules []ReferenceRule
	for _, s := range c.specs {
		rules = append(rules, s.Rules...)
	}
	return rules
}
