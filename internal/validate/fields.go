package validate

import (
	"fmt"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// rowField is the field name used for findings about the row as a whole
const rowField = "row"

// ValidateFields checks every row's width, required fields and formats.
// All findings for a row are returned; nothing short-circuits.
func ValidateFields(spec *catalog.FileSpec, variant catalog.Variant, rows []model.Row) []model.ValidationError {
	var errs []model.ValidationError

	for _, row := range rows {
		if len(row.Values) != len(variant.Header) {
			errs = append(errs, model.ValidationError{
				File:    spec.Name,
				Line:    row.Line,
				Field:   rowField,
				Kind:    model.KindFormat,
				Message: fmt.Sprintf("Invalid row: expected %d columns, got %d", len(variant.Header), len(row.Values)),
			})
		}

		for _, field := range variant.Header {
			value := row.Get(field)

			if value == "" {
				if variant.IsRequired(field) {
					errs = append(errs, model.ValidationError{
						File:    spec.Name,
						Line:    row.Line,
						Field:   field,
						Kind:    model.KindRequiredField,
						Message: fmt.Sprintf("Required field %s missing", field),
					})
				}
				continue
			}

			if reason, ok := checkFormat(spec.FormatOf(field), value); !ok {
				errs = append(errs, model.ValidationError{
					File:    spec.Name,
					Line:    row.Line,
					Field:   field,
					Kind:    model.KindFormat,
					Message: reason,
				})
			}
		}
	}

	return errs
}
