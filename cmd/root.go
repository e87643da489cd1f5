// Package cmd defines the paperwatch command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"paperwatch/internal/config"
	"paperwatch/internal/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paperwatch",
	Short: "paperwatch tracks arXiv for papers matching your interests.",
	Long: `paperwatch searches arXiv for papers matching your keywords and
categories, scores and filters them, annotates them with AI summaries,
translations, and insights, and delivers a markdown report by email or
webhook.

Run once with "paperwatch run", or keep it running on a daily schedule
with "paperwatch serve".`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.paperwatch.yaml)")
}

// loadConfig reads configuration and applies the configured log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetLevel(cfg.Logging.Level)
	return cfg, nil
}
