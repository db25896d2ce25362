// Command indexer walks a directory of audio files, fingerprints each one,
// and writes the results into the index store, in the same single-binary
// cobra-CLI style as the reference project's own command-line tool.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zfogg/echoprint/internal/config"
	"github.com/zfogg/echoprint/internal/index"
	"github.com/zfogg/echoprint/internal/indexing"
	"github.com/zfogg/echoprint/internal/logger"
	"github.com/zfogg/echoprint/internal/metrics"
)

var (
	maxDurationSec float64
	workers        int
	printTable     bool
)

var rootCmd = &cobra.Command{
	Use:   "indexer [directory]",
	Short: "Fingerprint a directory of audio files into the echoprint index",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().Float64Var(&maxDurationSec, "max-duration", 0, "skip files longer than this many seconds (0 disables the limit)")
	rootCmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent indexing workers")
	rootCmd.Flags().BoolVar(&printTable, "print-table", false, "render a per-file outcome table")
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	metrics.Initialize()

	db, err := index.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	store := index.New(db)
	if err := store.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	opts := indexing.DefaultOptions()
	opts.MaxDurationSec = maxDurationSec
	if workers > 0 {
		opts.Workers = workers
	}

	outcomes, err := indexing.Walk(args[0], store, opts)
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	var indexed, skipped, failed int
	for _, o := range outcomes {
		switch {
		case o.Err != nil && !o.Skipped:
			failed++
			metrics.Get().IndexerFilesTotal.WithLabelValues("failed").Inc()
		case o.Skipped:
			skipped++
			metrics.Get().IndexerFilesTotal.WithLabelValues("skipped").Inc()
		default:
			indexed++
			metrics.Get().IndexerFilesTotal.WithLabelValues("indexed").Inc()
		}
	}

	if printTable {
		printOutcomeTable(outcomes)
	}
	fmt.Printf("\nindexed %d, skipped %d, failed %d (of %d files)\n", indexed, skipped, failed, len(outcomes))
	return nil
}

func printOutcomeTable(outcomes []indexing.Outcome) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tTITLE\tSONG ID\tFINGERPRINTS\tOUTCOME")
	for _, o := range outcomes {
		outcome := "indexed"
		if o.Skipped {
			outcome = "skipped:" + o.SkipReason
		} else if o.Err != nil {
			outcome = "failed:" + o.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", o.Path, o.Title, o.SongID, o.Fingerprints, outcome)
	}
	w.Flush()
}
