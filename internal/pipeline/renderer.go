package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// Renderer writes the artifacts of a finished run. It only reads the Result.
type Renderer struct {
	catalog       *catalog.Catalog
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(c *catalog.Catalog, includeFooter bool) *Renderer {
	return &Renderer{
		catalog:       c,
		includeFooter: includeFooter,
	}
}

// RenderCSV writes one cleaned CSV per validated file into dir, with the
// source header and only the retained rows. Stale catalog files left in dir
// by an earlier run are removed so dir always mirrors this run.
func (r *Renderer) RenderCSV(result *model.Result, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	validated := make(map[string]bool, len(result.Validated))
	for _, name := range result.Validated {
		validated[name] = true
	}
	for _, name := range r.catalog.Names() {
		if validated[name] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale %s: %w", name, err)
		}
	}

	for _, name := range result.Validated {
		if err := writeCSV(filepath.Join(dir, name), result.Headers[name], result.Retained[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	return nil
}

func writeCSV(path string, header []string, rows []model.Row) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Values); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// RenderRemoved writes removed_records.json: file name to removed rows
func (r *Renderer) RenderRemoved(result *model.Result, path string) error {
	removed := result.Removed
	if removed == nil {
		removed = map[string][]model.RemovedRow{}
	}
	return r.RenderJSON(removed, path)
}

// RenderJSON writes v as indented JSON
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	b.WriteString("# Roster Validation Report\n\n")
	fmt.Fprintf(&b, "**Directory:** `%s`  \n", report.Directory)
	fmt.Fprintf(&b, "**Run:** `%s`  \n", report.RunID)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if report.HasErrors {
		fmt.Fprintf(&b, "**Result:** %d error(s) found\n\n", len(report.Errors))
	} else {
		b.WriteString("**Result:** no errors\n\n")
	}

	b.WriteString("## Files\n\n")
	b.WriteString("| File | Status | Variant | Total | Retained | Removed |\n")
	b.WriteString("|------|--------|---------|------:|---------:|--------:|\n")
	for _, name := range r.catalog.Names() {
		fc, ok := report.FileCounts[name]
		if !ok {
			continue
		}
		variant := fc.Variant
		if variant == "" {
			variant = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d |\n",
			name, fc.Status, variant, fc.Total, fc.Retained, fc.Removed)
	}
	b.WriteString("\n")

	if len(report.Errors) > 0 {
		b.WriteString("## Errors by Kind\n\n")
		counts := make(map[model.ErrorKind]int)
		for _, e := range report.Errors {
			counts[e.Kind]++
		}
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "- **%s**: %d\n", k, counts[model.ErrorKind(k)])
		}
		b.WriteString("\n")

		b.WriteString("## Errors\n\n")
		b.WriteString("| File | Line | Field | Message |\n")
		b.WriteString("|------|-----:|-------|---------|\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "| %s | %d | %s | %s |\n", e.File, e.Line, e.Field, escapeCell(e.Message))
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("*Rows listed above were removed from the cleaned output; nothing was repaired.*\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderSummary prints a terse per-file summary
func (r *Renderer) RenderSummary(w io.Writer, result *model.Result) {
	report := result.Report

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Roster Validation\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")

	for _, name := range r.catalog.Names() {
		fc, ok := report.FileCounts[name]
		if !ok {
			continue
		}
		switch fc.Status {
		case model.StatusSkipped:
			fmt.Fprintf(w, "  - %-22s skipped\n", name)
		case model.StatusRejected:
			fmt.Fprintf(w, "  ✗ %-22s rejected (%d rows not processed)\n", name, fc.Total)
		default:
			mark := "✓"
			if fc.Removed > 0 {
				mark = "!"
			}
			fmt.Fprintf(w, "  %s %-22s %d/%d retained, %d removed\n", mark, name, fc.Retained, fc.Total, fc.Removed)
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Errors:    %d\n", len(report.Errors))
	if result.OutputDir != "" {
		fmt.Fprintf(w, "  Output:    %s\n", result.OutputDir)
	}
	if result.ReportPath != "" {
		fmt.Fprintf(w, "  Report:    %s\n", result.ReportPath)
	}
	if result.RemovedPath != "" {
		fmt.Fprintf(w, "  Removed:   %s\n", result.RemovedPath)
	}
	fmt.Fprintf(w, "\n")
}
