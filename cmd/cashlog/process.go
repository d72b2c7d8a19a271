package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbenitez-dev/cashlog/internal/consolidate"
	"github.com/mbenitez-dev/cashlog/internal/consolidate/repository"
	"github.com/mbenitez-dev/cashlog/pkg/config"
)

var (
	baseDir string
	upload  bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one consolidation batch over the pending tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if baseDir != "" {
			cfg.Paths.BaseDir = baseDir
		}

		var repo consolidate.Repository
		if upload || cfg.Database.Enabled {
			pool, err := repository.NewPool(cmd.Context(), cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer pool.Close()
			repo = repository.NewPostgres(pool)
		}

		svc, err := consolidate.NewService(cfg, repo, logger)
		if err != nil {
			return err
		}
		report, err := svc.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("job %s: %d files, %d records\n",
			report.JobID, len(report.Files), report.TotalRecords())
		for t, n := range report.RecordsByType {
			fmt.Printf("  %-14s %d\n", t, n)
		}
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&baseDir, "base", "", "working tree root (overrides CASHLOG_BASE_DIR)")
	processCmd.Flags().BoolVar(&upload, "upload", false, "append consolidated tables to the database")
	rootCmd.AddCommand(processCmd)
}
