package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/avivbaron/uri-analyzer/internal/buildinfo"
	"github.com/avivbaron/uri-analyzer/internal/logs"
)

var (
	verbose bool
	format  string

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "urianalyzer",
	Short:         "Aggregate URI visit counts by domain level",
	Version:       buildinfo.Get().Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				log.Printf("warning: couldn't load .env: %v", err)
			}
		}
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		if verbose {
			level = "debug"
		}
		// stdout carries the report, logs go to stderr.
		logger = logs.NewWithOptions(logs.Options{Level: level, Output: "stderr", Format: "console", Component: "cli"})
		switch format {
		case formatTable, formatJSON:
			return nil
		}
		return errBadFormat(format)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every rejected line")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", formatTable, "output format: table|json")
	rootCmd.AddCommand(analyzeCmd, demoCmd)
}
