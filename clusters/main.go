package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aua-planner/planner/scrape/catalog"
	"github.com/aua-planner/planner/scrape/config"
	"github.com/aua-planner/planner/scrape/gened"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	url        string
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:          "clusters",
	Short:        "Scrape the general-education cluster table to CSV",
	SilenceUsage: true,
	RunE:         scrapeClusters,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "pipeline.yaml", "Configuration file")
	rootCmd.Flags().StringVar(&url, "url", "", "Cluster page (overrides config)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output CSV (overrides config)")
}

func scrapeClusters(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if url != "" {
		cfg.Clusters.URL = url
	}
	if outputPath != "" {
		cfg.Clusters.Output = outputPath
	}

	timeout, err := time.ParseDuration(cfg.Clusters.Timeout)
	if err != nil {
		return fmt.Errorf("clusters timeout: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	scraper := gened.NewScraper(&http.Client{Timeout: timeout}, logger)
	table, err := scraper.Scrape(ctx, cfg.Clusters.URL)
	if err != nil {
		logger.Error("Failed to scrape clusters", zap.String("url", cfg.Clusters.URL), zap.Error(err))
		return err
	}

	if err := catalog.WriteFileAtomic(cfg.Clusters.Output, func(w io.Writer) error {
		return table.WriteCSV(w)
	}); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Clusters.Output, err)
	}

	logger.Info("Wrote cluster table",
		zap.String("output", cfg.Clusters.Output),
		zap.Strings("headers", table.Headers),
		zap.Int("rows", len(table.Rows)))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
