package validate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// headerLine is the line every header finding is attributed to
const headerLine = 1

// ValidateHeader matches header against the spec's variants, exactly and in order.
// It returns the matched variant and ok=true, or the file-fatal errors.
func ValidateHeader(spec *catalog.FileSpec, header []string) (catalog.Variant, bool, []model.ValidationError) {
	var errs []model.ValidationError

	seen := make(map[string]bool, len(header))
	reported := make(map[string]bool)
	for _, name := range header {
		if seen[name] && !reported[name] {
			reported[name] = true
			errs = append(errs, model.ValidationError{
				File:    spec.Name,
				Line:    headerLine,
				Field:   "header",
				Kind:    model.KindDuplicateHeader,
				Message: fmt.Sprintf("Duplicate header column %s", name),
			})
		}
		seen[name] = true
	}
	if len(errs) > 0 {
		return catalog.Variant{}, false, errs
	}

	for _, v := range spec.Variants {
		if equalHeader(v.Header, header) {
			return v, true, nil
		}
	}

	expected := make([]string, len(spec.Variants))
	for i, v := range spec.Variants {
		expected[i] = formatHeader(v.Header)
	}

	return catalog.Variant{}, false, []model.ValidationError{{
		File:  spec.Name,
		Line:  headerLine,
		Field: "header",
		Kind:  model.KindHeader,
		Message: fmt.Sprintf("Invalid header. Expected %s, got %s",
			strings.Join(expected, " or "), formatHeader(header)),
	}}
}

func equalHeader(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func formatHeader(h []string) string {
	return "[" + strings.Join(h, ",") + "]"
}
