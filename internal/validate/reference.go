package validate

import (
	"fmt"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// KeyIndex is the set of valid sourcedIds of one file. Read-only once built.
type KeyIndex map[string]struct{}

// Contains reports whether id is a valid key
func (k KeyIndex) Contains(id string) bool {
	_, ok := k[id]
	return ok
}

// BuildIndex collects the sourcedIds of rows that carry no error yet.
// Unkeyed variants produce an empty index.
func BuildIndex(variant catalog.Variant, rows []model.Row, invalid model.RowErrors) KeyIndex {
	idx := make(KeyIndex)
	if !variant.Keyed() {
		return idx
	}
	for _, row := range rows {
		if invalid.Invalid(row.Line) {
			continue
		}
		if id := row.Get(catalog.KeyField); id != "" {
			idx[id] = struct{}{}
		}
	}
	return idx
}

// CheckReferences applies one rule to the source rows against the target index.
// A row that already has a finding on the rule's field is not re-checked.
func CheckReferences(rule catalog.ReferenceRule, rows []model.Row, prior model.RowErrors, target KeyIndex) []model.ValidationError {
	var errs []model.ValidationError

	for _, row := range rows {
		if prior.HasField(row.Line, rule.SourceField) {
			continue
		}

		value := row.Get(rule.SourceField)
		if value == "" {
			if rule.Optional {
				continue
			}
			errs = append(errs, model.ValidationError{
				File:  rule.SourceFile,
				Line:  row.Line,
				Field: rule.SourceField,
				Kind:  model.KindReference,
				Message: fmt.Sprintf("Missing ref: %s.%s is empty, required reference to %s.%s",
					rule.SourceFile, rule.SourceField, rule.TargetFile, rule.TargetField),
			})
			continue
		}

		if !target.Contains(value) {
			errs = append(errs, model.ValidationError{
				File:  rule.SourceFile,
				Line:  row.Line,
				Field: rule.SourceField,
				Kind:  model.KindReference,
				Message: fmt.Sprintf("Missing ref %s: %s.%s not found in %s.%s",
					value, rule.SourceFile, rule.SourceField, rule.TargetFile, rule.TargetField),
			})
		}
	}

	return errs
}
