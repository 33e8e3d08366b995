package validate

import (
	"fmt"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// DetectDuplicates flags every repeat of a sourcedId after its first row.
// The first row holding an id stays canonical whatever happens to later ones.
// Files whose variant has no sourcedId column are not keyed and yield nothing.
func DetectDuplicates(spec *catalog.FileSpec, variant catalog.Variant, rows []model.Row) []model.ValidationError {
	if !variant.Keyed() {
		return nil
	}

	var errs []model.ValidationError
	firstSeen := make(map[string]int, len(rows))

	for _, row := range rows {
		id := row.Get(catalog.KeyField)
		if id == "" {
			continue // required check owns empty keys
		}
		if first, ok := firstSeen[id]; ok {
			errs = append(errs, model.ValidationError{
				File:    spec.Name,
				Line:    row.Line,
				Field:   catalog.KeyField,
				Kind:    model.KindDuplicateKey,
				Message: fmt.Sprintf("Duplicate sourcedId: %s (first seen on line %d)", id, first),
			})
			continue
		}
		firstSeen[id] = row.Line
	}

	return errs
}
