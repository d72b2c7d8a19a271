package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cashlog",
	Short: "Consolidates cash-logistics statement exports",
	Long: `cashlog reads the headerless statement exports the Prosegur delegations
drop into the pending directory (account statements, bulk-goods statements
and denomination inventories, as XLSX or CSV), extracts them into
normalized tables and writes per-type consolidated outputs.

Processed files are archived under PROCESADOS; consolidated workbooks and
the batch report land under CONSOLIDADO/<date>.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
