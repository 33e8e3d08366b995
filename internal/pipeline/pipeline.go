package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ppiankov/sdsvalidate/internal/catalog"
	"github.com/ppiankov/sdsvalidate/internal/load"
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// Pipeline orchestrates a complete run: load, validate, write
type Pipeline struct {
	loader   *load.Loader
	engine   *Engine
	renderer *Renderer
	config   *model.Config
	logger   *zap.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := catalog.Default()

	return &Pipeline{
		loader:   load.NewLoader(c, logger.Named("load")),
		engine:   NewEngine(c, cfg.Concurrency.Workers, logger.Named("engine")),
		renderer: NewRenderer(c, cfg.Output.IncludeFooter),
		config:   cfg,
		logger:   logger,
	}
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Validate runs the whole pipeline over dir.
//
// Missing required files fail the run before anything is written: the
// returned error wraps *load.MissingFilesError and the returned Result
// carries one missing_file entry per absent file. Every other finding is
// non-fatal and lands in Result.Errors.
func (p *Pipeline) Validate(ctx context.Context, dir string) (*model.Result, error) {
	log := p.logger.With(zap.String("dir", dir))

	// 1. Load
	ds, err := p.loader.Load(ctx, dir)
	if err != nil {
		var missing *load.MissingFilesError
		if errors.As(err, &missing) {
			log.Error("required files missing", zap.Error(err))
			return &model.Result{Errors: missing.Errors()}, fmt.Errorf("load: %w", err)
		}
		return nil, fmt.Errorf("load: %w", err)
	}
	log.Info("dataset loaded",
		zap.Int("files", len(ds.Files)),
		zap.Strings("skipped", ds.Skipped),
	)

	// 2. Validate
	result, err := p.engine.Run(ctx, ds)
	if err != nil {
		return nil, err
	}
	log.Info("validation complete",
		zap.String("run_id", result.Report.RunID),
		zap.Int("errors", len(result.Errors)),
	)

	// 3. Write
	if err := p.Write(result, dir); err != nil {
		return result, fmt.Errorf("write outputs: %w", err)
	}

	return result, nil
}

// Write renders every artifact of result. Relative output paths resolve
// against dir. Artifact paths are recorded on result.
func (p *Pipeline) Write(result *model.Result, dir string) error {
	out := p.config.Output

	outDir := resolvePath(dir, out.Dir, model.DefaultOutputDir)
	if same, err := samePath(outDir, dir); err != nil {
		return err
	} else if same {
		return fmt.Errorf("output directory %s would overwrite the input files", outDir)
	}

	if err := p.renderer.RenderCSV(result, outDir); err != nil {
		return fmt.Errorf("render CSV: %w", err)
	}
	result.OutputDir = outDir

	removedPath := resolvePath(dir, out.RemovedFile, model.DefaultRemovedFile)
	if err := p.renderer.RenderRemoved(result, removedPath); err != nil {
		return fmt.Errorf("render removed records: %w", err)
	}
	result.RemovedPath = removedPath

	reportPath := resolvePath(dir, out.ReportFile, model.DefaultReportFile)
	if err := p.renderer.RenderJSON(result.Report, reportPath); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	result.ReportPath = reportPath

	if out.MarkdownFile != "" {
		mdPath := resolvePath(dir, out.MarkdownFile, "")
		if err := p.renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug("wrote markdown", zap.String("path", mdPath))
	}

	p.logger.Debug("outputs written",
		zap.String("output_dir", outDir),
		zap.String("report", reportPath),
		zap.String("removed", removedPath),
	)

	return nil
}

func resolvePath(dir, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", b, err)
	}
	return absA == absB, nil
}
