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

var (
	// Download command flags
	outputDir  string
	categoryID int
	resetToken bool
	dryRun     bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download trivia questions for every category",
	Long: `Download all trivia questions from the Open Trivia Database, one
category at a time, into per-category JSON files.

Runs are resumable: questions already on disk are kept and deduplicated
against, so re-running the command only adds what is missing. A session
token is requested once and reused across runs so the API avoids
repeating questions it has already served.`,
	Example: `  # Download every category into the default output directory
  triviafetch download

  # Download into a specific directory
  triviafetch download --output ./trivia_data

  # Download a single category by id
  triviafetch download --category 9

  # Wipe the server's memory of served questions before downloading
  triviafetch download --reset-token

  # Show what would be downloaded without touching the network
  triviafetch download --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runDownload(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloaded data")
	downloadCmd.Flags().IntVar(&categoryID, "category", 0, "download a single category by id")
	downloadCmd.Flags().BoolVar(&resetToken, "reset-token", false, "reset the session token's server-side memory before downloading")
	downloadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "describe the planned run without making any requests")
}

func runDownload(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if dryRun {
		fmt.Println("Dry run, no requests will be made.")
		fmt.Printf("  Output directory:  %s\n", cfg.Output.BaseDirectory)
		fmt.Printf("  API base URL:      %s\n", cfg.API.BaseURL)
		fmt.Printf("  Request interval:  %s\n", cfg.API.MinRequestInterval)
		if categoryID > 0 {
			fmt.Printf("  Scope:             category %d only\n", categoryID)
		} else {
			fmt.Println("  Scope:             all categories")
		}
		if resetToken {
			fmt.Println("  Token:             would be reset before downloading")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archiver, err := archive.New(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize archiver")
		fmt.Fprintln(os.Stderr, "Failed to initialize:", err)
		os.Exit(1)
	}

	if resetToken {
		tok, _, err := archiver.Tokens().Get(ctx)
		if err != nil {
			logger.WithError(err).Error("failed to obtain session token for reset")
			fmt.Fprintln(os.Stderr, "Failed to obtain session token:", err)
			os.Exit(1)
		}
		if archiver.Tokens().Reset(ctx, tok) {
			fmt.Println("Session token reset.")
		} else {
			fmt.Println("Session token reset failed, continuing with current token.")
		}
	}

	if categoryID > 0 {
		runSingleCategory(ctx, archiver)
		return
	}

	stats, err := archiver.DownloadAll(ctx)
	if stats != nil {
		fmt.Println(archive.RenderSummaryTable(stats))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Download aborted:", err)
		os.Exit(1)
	}
}

func runSingleCategory(ctx context.Context, archiver *archive.Archiver) {
	result, err := archiver.DownloadSingleCategory(ctx, categoryID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Download aborted:", err)
		os.Exit(1)
	}

	fmt.Println(archive.RenderSummaryTable(result.Stats))

	if result.Dataset != nil && result.Available != nil {
		fmt.Printf("Category %q: %s\n",
			result.Category.Name,
			archive.FormatAvailability(result.Dataset.Statistics.TotalQuestions, result.Available.Total))
	}
}
