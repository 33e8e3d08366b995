package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
	"github.com/ppiankov/sdsvalidate/internal/validate"
	"github.com/ppiankov/sdsvalidate/internal/worker"
)

// Engine is the validation core. It reads a Dataset and produces a Result
// without touching the filesystem.
type Engine struct {
	catalog   *catalog.Catalog
	validator *validate.Validator
	processor *worker.FileProcessor
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an engine over the catalog with the given parallelism
func NewEngine(c *catalog.Catalog, workers int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validate.NewValidator(c, workers)
	return &Engine{
		catalog:   c,
		validator: v,
		processor: worker.NewFileProcessor(v, workers),
		logger:    logger,
		now:       time.Now,
	}
}

// Run validates the dataset.
//
//  1. Per-file phase (header, fields, duplicates, key index) on the worker pool
//  2. Barrier: every outcome final
//  3. Cross-file references, fanned out per source file
//  4. Partition and report, in catalog order
func (e *Engine) Run(ctx context.Context, ds *model.Dataset) (*model.Result, error) {
	var files []*model.File
	for _, name := range e.catalog.Names() {
		if f, ok := ds.Files[name]; ok {
			files = append(files, f)
		}
	}

	fileResults, err := e.processor.ProcessFiles(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("validate files: %w", err)
	}

	outcomes := make(map[string]*validate.FileOutcome, len(fileResults))
	for _, fr := range fileResults {
		outcomes[fr.Name] = fr.Outcome
		e.logger.Debug("file checked",
			zap.String("file", fr.Name),
			zap.Bool("accepted", fr.Outcome.Accepted),
			zap.String("variant", fr.Outcome.Variant.Name),
			zap.Int("row_errors", len(fr.Outcome.RowErrors)),
			zap.Int("keys", len(fr.Outcome.Index)),
		)
	}

	refs, err := e.validator.CheckAllReferences(ctx, outcomes, ds.IsSkipped)
	if err != nil {
		return nil, fmt.Errorf("check references: %w", err)
	}

	result := &model.Result{
		Errors:   []model.ValidationError{},
		Retained: make(map[string][]model.Row),
		Removed:  make(map[string][]model.RemovedRow),
		Headers:  make(map[string][]string),
	}
	report := &model.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: e.now().UTC(),
		Directory:   ds.Dir,
		FileCounts:  make(map[string]model.FileCount),
		Skipped:     ds.Skipped,
	}

	for _, name := range e.catalog.Names() {
		if ds.IsSkipped(name) {
			report.FileCounts[name] = model.FileCount{Status: model.StatusSkipped}
			continue
		}

		if readErr, ok := ds.ReadErrors[name]; ok {
			result.Errors = append(result.Errors, model.ValidationError{
				File:    name,
				Kind:    model.KindRead,
				Message: fmt.Sprintf("Unreadable file: %v", readErr),
			})
			report.FileCounts[name] = model.FileCount{Status: model.StatusRejected}
			continue
		}

		out, ok := outcomes[name]
		if !ok {
			continue
		}

		if !out.Accepted {
			result.Errors = append(result.Errors, out.HeaderErrors...)
			report.FileCounts[name] = model.FileCount{
				Status: model.StatusRejected,
				Total:  len(out.File.Rows),
			}
			continue
		}

		fileErrs := slices.Concat(out.RowErrors, refs[name])
		slices.SortStableFunc(fileErrs, func(a, b model.ValidationError) int {
			return a.Line - b.Line
		})
		result.Errors = append(result.Errors, fileErrs...)

		retained, removed := validate.Partition(out.File.Rows, fileErrs)
		result.Retained[name] = retained
		if len(removed) > 0 {
			result.Removed[name] = removed
		}
		result.Headers[name] = out.File.Header
		result.Validated = append(result.Validated, name)

		report.FileCounts[name] = model.FileCount{
			Status:   model.StatusValidated,
			Variant:  out.Variant.Name,
			Total:    len(out.File.Rows),
			Retained: len(retained),
			Removed:  len(removed),
		}
	}

	report.Errors = result.Errors
	report.HasErrors = len(result.Errors) > 0
	result.Report = report

	return result, nil
}
