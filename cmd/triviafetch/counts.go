package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"triviafetch/pkg/archive"
	"triviafetch/pkg/logger"
)

// countsCmd represents the counts command
var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Compare downloaded question counts against the API",
	Long: `Compare what a previous download run archived against the question
counts the Open Trivia Database currently reports per category.

Requires a completed download run: the comparison reads the persisted
run summary and queries the API for each category's available count.`,
	Example: `  # Show the per-category completeness report
  triviafetch counts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runCounts(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countsCmd)
}

func runCounts(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archiver, err := archive.New(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize archiver")
		fmt.Fprintln(os.Stderr, "Failed to initialize:", err)
		os.Exit(1)
	}

	comparison, err := archiver.CompareCounts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Comparison failed:", err)
		os.Exit(1)
	}

	fmt.Println(archive.RenderCountsTable(comparison))
}
