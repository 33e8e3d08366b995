package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/sdsvalidate/internal/logging"
	"github.com/ppiankov/sdsvalidate/internal/model"
	"github.com/ppiankov/sdsvalidate/internal/pipeline"
)

// errFindings is returned when --fail-on-errors is set and a run has findings
var errFindings = errors.New("validation found errors")

var (
	timeout      time.Duration
	failOnErrors bool
	noFooter     bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Validate a directory of SDS roster CSV files",
	Long: `Validate checks every roster file in <dir> and writes:
- cleaned CSVs (retained rows only) into the output directory
- validation_report.json with every finding
- removed_records.json with each removed row and its reasons

orgs.csv, users.csv and roles.csv are required; classes.csv,
enrollments.csv, academicSessions.csv and courses.csv are optional.

Example:
  sdsvalidate validate ./roster
  sdsvalidate validate ./roster --output-dir /tmp/clean --md report.md
  sdsvalidate validate ./roster --fail-on-errors=false`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addRunFlags(validateCmd)
	validateCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall validation timeout")
}

// addRunFlags registers the flags shared by validate and batch
func addRunFlags(cmd *cobra.Command) {
	d := model.DefaultConfig()
	f := cmd.Flags()

	// Output flags
	f.String("output-dir", d.Output.Dir, "directory for cleaned CSVs (relative to <dir>)")
	f.String("report", d.Output.ReportFile, "validation report JSON path (relative to <dir>)")
	f.String("removed", d.Output.RemovedFile, "removed records JSON path (relative to <dir>)")
	f.String("md", "", "Markdown report path (optional, relative to <dir>)")
	f.BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Run flags
	f.Int("workers", d.Concurrency.Workers, "number of files validated concurrently")
	f.String("log-level", d.Logging.Level, "log level (debug, info, warn, error)")
	f.String("log-format", d.Logging.Format, "log format (console, json)")
	f.BoolVar(&failOnErrors, "fail-on-errors", true, "exit non-zero when any validation error is found")
}

// flagKeys maps run flags to config keys
var flagKeys = map[string]string{
	"output-dir": "output.dir",
	"report":     "output.report_file",
	"removed":    "output.removed_file",
	"md":         "output.markdown_file",
	"workers":    "concurrency.workers",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// bindRunFlags binds cmd's flags at run time; validate and batch share keys
// and a binding made in init would be overwritten by the last command
func bindRunFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// runConfig resolves the configuration for a run command
func runConfig(cmd *cobra.Command) (*model.Config, error) {
	v := viper.GetViper()
	if err := bindRunFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	return cfg, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := args[0]

	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Output.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	if cfg.Output.Verbose {
		fmt.Fprintf(stderr, "Validating: %s\n", dir)
		fmt.Fprintf(stderr, "Workers: %d\n", cfg.Concurrency.Workers)
		fmt.Fprintf(stderr, "Timeout: %v\n", timeout)
		fmt.Fprintln(stderr)
	}

	result, err := validateDir(ctx, cfg, logger, dir, stderr)
	if err != nil {
		return err
	}
	if failOnErrors && result.HasErrors() {
		return fmt.Errorf("%w: %d finding(s), see %s", errFindings, len(result.Errors), result.ReportPath)
	}
	return nil
}

// validateDir runs one pipeline over dir and prints its summary to w
func validateDir(ctx context.Context, cfg *model.Config, logger *zap.Logger, dir string, w io.Writer) (*model.Result, error) {
	p := pipeline.NewPipeline(cfg, logger)

	result, err := p.Validate(ctx, dir)
	if err != nil {
		if result != nil {
			printErrors(w, result.Errors)
		}
		return nil, fmt.Errorf("validate %s: %w", dir, err)
	}

	p.Renderer().RenderSummary(w, result)
	if cfg.Output.Verbose {
		printErrors(w, result.Errors)
	}
	return result, nil
}

func printErrors(w io.Writer, errs []model.ValidationError) {
	for _, e := range errs {
		fmt.Fprintf(w, "  ✗ %s\n", e.Error())
	}
	if len(errs) > 0 {
		fmt.Fprintln(w)
	}
}
