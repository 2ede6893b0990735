package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"triviafetch/pkg/catalogue"
	"triviafetch/pkg/config"
	"triviafetch/pkg/logger"
)

var (
	// Catalogue command flags
	assetsDir    string
	dataDir      string
	ollamaHost   string
	ollamaModel  string
	descriptions bool
)

// catalogueCmd represents the catalogue command group
var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "Maintain the media asset catalogue",
	Long: `Maintain a catalogue of media assets alongside the trivia archive.

The catalogue scans an assets directory for supported image, audio and
video files, records their metadata as JSON, and can attach short
AI-generated descriptions through a local Ollama instance.`,
}

// catalogueRefreshCmd rescans assets and rewrites the catalogue
var catalogueRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan the assets directory and rewrite the catalogue",
	Example: `  # Refresh using configured directories
  triviafetch catalogue refresh

  # Refresh a specific assets directory with AI descriptions
  triviafetch catalogue refresh --assets-dir ./media --describe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runCatalogueRefresh(cmd, args)
		return nil
	},
}

// catalogueStatsCmd prints aggregate catalogue statistics
var catalogueStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalogue statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		runCatalogueStats(cmd, args)
		return nil
	},
}

// catalogueValidateCmd validates the persisted catalogue
var catalogueValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the persisted catalogue",
	Long: `Validate that every catalogued asset carries the configured required
fields. In strict mode the command exits non-zero when any asset is
invalid; otherwise problems are logged and the command succeeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runCatalogueValidate(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogueCmd)
	catalogueCmd.AddCommand(catalogueRefreshCmd)
	catalogueCmd.AddCommand(catalogueStatsCmd)
	catalogueCmd.AddCommand(catalogueValidateCmd)

	catalogueCmd.PersistentFlags().StringVar(&assetsDir, "assets-dir", "", "directory holding the media assets")
	catalogueCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the catalogue file")
	catalogueRefreshCmd.Flags().StringVar(&ollamaHost, "ollama-host", "", "Ollama API host for descriptions")
	catalogueRefreshCmd.Flags().StringVar(&ollamaModel, "ollama-model", "", "Ollama model for descriptions")
	catalogueRefreshCmd.Flags().BoolVar(&descriptions, "describe", false, "generate AI descriptions for scanned assets")
}

// catalogueManager loads configuration and builds the catalogue manager
func catalogueManager() (*catalogue.Manager, *config.Config) {
	flags := make(map[string]interface{})
	if assetsDir != "" {
		flags["assets-dir"] = assetsDir
	}
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	if ollamaHost != "" {
		flags["ollama-host"] = ollamaHost
	}
	if ollamaModel != "" {
		flags["ollama-model"] = ollamaModel
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if descriptions {
		cfg.Catalogue.DescriptionsEnabled = true
	}

	manager, err := catalogue.NewManager(cfg.Catalogue, logger.GetLogger())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize catalogue:", err)
		os.Exit(1)
	}
	return manager, cfg
}

func runCatalogueRefresh(cmd *cobra.Command, args []string) {
	manager, _ := catalogueManager()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Refresh(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Catalogue refresh failed:", err)
		os.Exit(1)
	}
	fmt.Println("Catalogue refreshed.")
}

func runCatalogueStats(cmd *cobra.Command, args []string) {
	manager, _ := catalogueManager()
	stats := manager.GetStats()

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Asset Catalogue")
	t.AppendRow(table.Row{"Total assets", stats.TotalAssets})
	t.AppendRow(table.Row{"Total size (bytes)", stats.TotalSize})
	if stats.LastUpdated != "" {
		t.AppendRow(table.Row{"Last updated", stats.LastUpdated})
	}

	types := make([]string, 0, len(stats.ByType))
	for assetType := range stats.ByType {
		types = append(types, assetType)
	}
	sort.Strings(types)
	for _, assetType := range types {
		t.AppendRow(table.Row{fmt.Sprintf("Type: %s", assetType), stats.ByType[assetType]})
	}

	fmt.Println(t.Render())
}

func runCatalogueValidate(cmd *cobra.Command, args []string) {
	manager, cfg := catalogueManager()

	cat := manager.Load()
	if manager.Validate(cat) {
		fmt.Printf("Catalogue is valid: %d assets.\n", len(cat.Assets))
		return
	}

	fmt.Fprintln(os.Stderr, "Catalogue validation failed.")
	if cfg.Catalogue.StrictMode {
		os.Exit(1)
	}
}
