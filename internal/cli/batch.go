package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/sentidash/internal/dashboard"
	"github.com/ppiankov/sentidash/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	formats      []string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <presets.yaml>",
	Short: "Render reports for many saved selections in parallel",
	Long: `Batch renders the chart and feature summaries for every preset in a
YAML file and writes one report per preset and format.

Presets file:
  presets:
    - name: Nissan January
      selection:
        brand: [Nissan]
        from_date: 2024-01-01
        to_date: 2024-01-31

Example:
  sentidash batch presets.yaml
  sentidash batch presets.yaml --concurrency 8 --output-dir ./reports --formats json,markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./sentidash-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringSliceVar(&formats, "formats", []string{dashboard.FormatJSON, dashboard.FormatMarkdown}, "report formats: json, yaml, markdown, table")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = a.cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(a.ctx, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Sentidash Batch Reports\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Presets:      %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Formats:      %s\n", strings.Join(formats, ", "))
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	d, err := a.dashboard()
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(d, concurrency, outputDir, formats)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Name, result.Error)
			continue
		}
		successCount++

		total := result.Report.Chart.Chart.Total
		fmt.Fprintf(os.Stderr, "✓ %s (%d rows, %d models)\n", result.Name, total, len(result.Report.Chart.Chart.Models))
		for _, line := range staleLines(result.Report.Stale) {
			fmt.Fprintf(os.Stderr, "    stale %s\n", line)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d presets\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d presets failed", failureCount, len(results))
	}
	return nil
}
