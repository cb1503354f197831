package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/avivbaron/uri-analyzer/internal/analysis"
	"github.com/avivbaron/uri-analyzer/internal/cache"
	"github.com/avivbaron/uri-analyzer/internal/models"
)

var (
	inputFile string
	level     int
	sites     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Read \"<visits> <uri>\" lines and print visits per domain",
	Example: `  urianalyzer analyze --input visits.txt --level 2
  cat visits.txt | urianalyzer analyze --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if inputFile != "" && inputFile != "-" {
			f, err := os.Open(inputFile)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			in = f
		}
		lines, err := analysis.ReadLines(in)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cmd.OutOrStdout(), lines, level, sites)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input file (default stdin)")
	analyzeCmd.Flags().IntVarP(&level, "level", "l", analysis.DefaultLevel, "domain level to group by")
	analyzeCmd.Flags().BoolVar(&sites, "sites", false, "group by registrable domain instead of level")
}

// run ingests lines into a fresh analyzer and renders one report.
func run(ctx context.Context, w io.Writer, lines []string, level int, bySite bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc := analysis.NewService(analysis.NewAnalyzer(), cache.Noop{}, 0, logger)

	res, err := svc.Ingest(ctx, lines)
	if err != nil {
		return err
	}

	var rep models.DomainReport
	if bySite {
		rep, err = svc.SiteReport(ctx)
	} else {
		rep, err = svc.DomainReport(ctx, level)
	}
	if err != nil {
		return err
	}
	return render(w, format, res, rep)
}
