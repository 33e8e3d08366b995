// Package load reads a roster directory into an immutable model.Dataset.
package load

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

const utf8BOM = "\ufeff"

// MissingFileError reports an absent required file
type MissingFileError struct {
	File string
	Dir  string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("required file %s not found in %s", e.File, e.Dir)
}

// MissingFilesError aggregates every absent required file of a run
type MissingFilesError struct {
	Missing []*MissingFileError
}

func (e *MissingFilesError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.File
	}
	return fmt.Sprintf("missing required files: %s", strings.Join(names, ", "))
}

// Unwrap exposes each missing file to errors.As
func (e *MissingFilesError) Unwrap() []error {
	errs := make([]error, len(e.Missing))
	for i, m := range e.Missing {
		errs[i] = m
	}
	return errs
}

// Errors converts the missing files into report entries
func (e *MissingFilesError) Errors() []model.ValidationError {
	out := make([]model.ValidationError, len(e.Missing))
	for i, m := range e.Missing {
		out[i] = model.ValidationError{
			File:    m.File,
			Line:    0,
			Kind:    model.KindMissingFile,
			Message: fmt.Sprintf("Required file %s not found", m.File),
		}
	}
	return out
}

// Loader reads catalog files from a directory
type Loader struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewLoader creates a loader for the given catalog
func NewLoader(c *catalog.Catalog, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{catalog: c, logger: logger}
}

// Load scans dir for every catalog file and parses the ones present.
// Absent required files fail the whole load with *MissingFilesError.
// A present file that cannot be parsed is recorded in Dataset.ReadErrors
// and does not stop the load.
func (l *Loader) Load(ctx context.Context, dir string) (*model.Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", dir)
	}

	ds := &model.Dataset{
		Dir:        dir,
		Files:      make(map[string]*model.File),
		ReadErrors: make(map[string]error),
	}

	var missing []*MissingFileError
	var present []string

	for _, spec := range l.catalog.Files() {
		path := filepath.Join(dir, spec.Name)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			present = append(present, spec.Name)
		case errors.Is(err, os.ErrNotExist):
			if spec.Required {
				missing = append(missing, &MissingFileError{File: spec.Name, Dir: dir})
			} else {
				ds.Skipped = append(ds.Skipped, spec.Name)
				l.logger.Debug("optional file absent", zap.String("file", spec.Name))
			}
		default:
			return nil, fmt.Errorf("stat %s: %w", spec.Name, err)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingFilesError{Missing: missing}
	}

	for _, name := range present {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, name)
		f, err := ReadFile(name, path)
		if err != nil {
			l.logger.Warn("file unreadable", zap.String("file", name), zap.Error(err))
			ds.ReadErrors[name] = err
			continue
		}
		ds.Files[name] = f
		l.logger.Debug("file loaded",
			zap.String("file", name),
			zap.Int("rows", len(f.Rows)),
			zap.Strings("header", f.Header),
		)
	}

	return ds, nil
}

// ReadFile parses one CSV file. The first record is the header.
func ReadFile(name, path string) (file *model.File, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() {
		if closeErr := fh.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close file: %w", closeErr)
		}
	}()

	return Parse(name, path, fh)
}

// Parse reads CSV content from r
func Parse(name, path string, r io.Reader) (*model.File, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1 // row width is checked by the field validator

	file := &model.File{Name: name, Path: path}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return file, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	file.Header = header

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)
		file.Rows = append(file.Rows, model.Row{
			Line:   line,
			Header: header,
			Values: rec,
		})
	}

	return file, nil
}
