// Package validate implements the roster checks: header matching, field
// formats, duplicate keys and cross-file references, plus the partitioning
// of rows into retained and removed sets.
//
// Checks never abort on a bad row. Each phase returns its findings and later
// phases consult them instead of relying on control flow.
package validate

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// FileOutcome is the per-file phase result for one file
type FileOutcome struct {
	Name     string
	File     *model.File
	Variant  catalog.Variant
	Accepted bool // header matched a variant

	HeaderErrors []model.ValidationError
	RowErrors    []model.ValidationError // field and duplicate findings, row order

	// Index holds the keys of rows with no finding so far. Nil when not accepted.
	Index KeyIndex
}

// Invalid returns the per-line view of the outcome's row findings
func (o *FileOutcome) Invalid() model.RowErrors {
	m := make(model.RowErrors)
	m.Add(o.RowErrors...)
	return m
}

// Validator runs the catalog's checks over loaded files
type Validator struct {
	catalog    *catalog.Catalog
	maxWorkers int
}

// NewValidator creates a validator. maxWorkers bounds the reference fan-out.
func NewValidator(c *catalog.Catalog, maxWorkers int) *Validator {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Validator{
		catalog:    c,
		maxWorkers: maxWorkers,
	}
}

// Catalog returns the catalog the validator checks against
func (v *Validator) Catalog() *catalog.Catalog {
	return v.catalog
}

// ValidateFile runs the independent per-file phase: header, fields,
// duplicates, then the key index. Safe to call concurrently for different files.
func (v *Validator) ValidateFile(ctx context.Context, f *model.File) *FileOutcome {
	out := &FileOutcome{Name: f.Name, File: f}

	spec, ok := v.catalog.Lookup(f.Name)
	if !ok {
		return out
	}

	variant, ok, headerErrs := ValidateHeader(spec, f.Header)
	if !ok {
		out.HeaderErrors = headerErrs
		return out
	}
	out.Variant = variant
	out.Accepted = true

	if ctx.Err() != nil {
		return out
	}

	rowErrs := ValidateFields(spec, variant, f.Rows)
	rowErrs = append(rowErrs, DetectDuplicates(spec, variant, f.Rows)...)
	sortByLine(rowErrs)
	out.RowErrors = rowErrs

	out.Index = BuildIndex(variant, f.Rows, out.Invalid())
	return out
}

// CheckAllReferences runs every reference rule once all outcomes are final.
// Rules touching a skipped file are bypassed. A present target that failed
// its header check contributes an empty index, so every reference into it fails.
// Findings are returned per source file; each source file is checked by its
// own goroutine and writes only its own slot.
func (v *Validator) CheckAllReferences(ctx context.Context, outcomes map[string]*FileOutcome, skipped func(string) bool) (map[string][]model.ValidationError, error) {
	specs := v.catalog.Files()
	slots := make([][]model.ValidationError, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxWorkers)

	for i, spec := range specs {
		src, ok := outcomes[spec.Name]
		if !ok || !src.Accepted || len(spec.Rules) == 0 {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prior := src.Invalid()

			var errs []model.ValidationError
			for _, rule := range spec.Rules {
				if skipped(rule.SourceFile) || skipped(rule.TargetFile) {
					continue
				}
				if !src.Variant.HasField(rule.SourceField) {
					continue
				}
				var target KeyIndex
				if t, ok := outcomes[rule.TargetFile]; ok {
					target = t.Index
				}
				errs = append(errs, CheckReferences(rule, src.File.Rows, prior, target)...)
			}
			sortByLine(errs)
			slots[i] = errs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string][]model.ValidationError)
	for i, spec := range specs {
		if len(slots[i]) > 0 {
			result[spec.Name] = slots[i]
		}
	}
	return result, nil
}

// sortByLine orders findings by line, keeping phase order within a line
func sortByLine(errs []model.ValidationError) {
	slices.SortStableFunc(errs, func(a, b model.ValidationError) int {
		return a.Line - b.Line
	})
}
