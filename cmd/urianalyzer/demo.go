package main

import (
	"github.com/spf13/cobra"
)

var demoLines = []string{
	"asdf www.hommits..by",
	"-123 12www.hommits.com",
	"123 hommits*++&.com.hoMMits.by",
	"345 www.hom--mits.uk",
	"754 hommits.by",
	"98 www.biz.hommits.by",
	"234 hTtps://hommits.com",
	"19 https://www.hommits.com",
	"234 http://hommits.by",
	"234 http://hom-mits.by",
	"111 httP://hom-mits22.by",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Analyze a built-in sample batch at level 1",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd.OutOrStdout(), demoLines, 1, false)
	},
}
