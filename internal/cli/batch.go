package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/sdsvalidate/internal/logging"
)

var batchTimeout time.Duration

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>...",
	Short: "Validate several roster directories",
	Long: `Batch validates each roster directory in turn with the same settings.
Every directory gets its own cleaned output, report and removed records.
A directory that fails fatally does not stop the others.

Example:
  sdsvalidate batch ./district-a ./district-b
  sdsvalidate batch ./exports/* --workers 8 --timeout 30m`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addRunFlags(batchCmd)
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Output.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  sdsvalidate Batch\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Directories:  %d\n", len(args))
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Timeout:      %v\n", batchTimeout)

	var clean, withFindings, failed int
	for _, dir := range args {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch interrupted: %w", err)
		}

		fmt.Fprintf(stderr, "\n⚙️  %s\n", dir)
		result, err := validateDir(ctx, cfg, logger.With(zap.String("dir", dir)), dir, stderr)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(stderr, "✗ %v\n", err)
		case result.HasErrors():
			withFindings++
		default:
			clean++
		}
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:          %d\n", len(args))
	fmt.Fprintf(stderr, "  Clean:          %d\n", clean)
	fmt.Fprintf(stderr, "  With findings:  %d\n", withFindings)
	fmt.Fprintf(stderr, "  Failed:         %d\n", failed)
	fmt.Fprintf(stderr, "\n")

	var errs []error
	if failed > 0 {
		errs = append(errs, fmt.Errorf("%d of %d directories failed", failed, len(args)))
	}
	if failOnErrors && withFindings > 0 {
		errs = append(errs, fmt.Errorf("%w in %d of %d directories", errFindings, withFindings, len(args)))
	}
	return errors.Join(errs...)
}
