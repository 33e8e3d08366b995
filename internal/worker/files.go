package worker

import (
	"context"

	"github.com/ppiankov/sdsvalidate/internal/model"
	"github.com/ppiankov/sdsvalidate/internal/validate"
)

// FileChecker defines the per-file validation phase
type FileChecker interface {
	ValidateFile(ctx context.Context, f *model.File) *validate.FileOutcome
}

// FileJob runs the per-file phase for one file
type FileJob struct {
	File    *model.File
	Checker FileChecker
}

// Execute executes the file job
func (j *FileJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &FileResult{Name: j.File.Name, Error: err}
	}
	return &FileResult{
		Name:    j.File.Name,
		Outcome: j.Checker.ValidateFile(ctx, j.File),
	}
}

// FileResult represents the result of a file job
type FileResult struct {
	Name    string
	Outcome *validate.FileOutcome
	Error   error
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// FileProcessor runs the per-file phase for many files concurrently
type FileProcessor struct {
	checker     FileChecker
	concurrency int
}

// NewFileProcessor creates a new file processor
func NewFileProcessor(checker FileChecker, concurrency int) *FileProcessor {
	return &FileProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessFiles validates files concurrently and returns one result per file,
// in the same order as files. Returning is the barrier: every outcome is final.
func (b *FileProcessor) ProcessFiles(ctx context.Context, files []*model.File) ([]*FileResult, error) {
	if len(files) == 0 {
		return []*FileResult{}, nil
	}

	workers := b.concurrency
	if workers > len(files) {
		workers = len(files)
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	for _, f := range files {
		pool.Submit(&FileJob{
			File:    f,
			Checker: b.checker,
		})
	}

	results := pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileResults := make([]*FileResult, len(results))
	for i, result := range results {
		fr, ok := result.(*FileResult)
		if !ok || fr == nil {
			return nil, context.Canceled
		}
		if fr.Error != nil {
			return nil, fr.Error
		}
		fileResults[i] = fr
	}

	return fileResults, nil
}
