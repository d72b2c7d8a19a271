package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mbenitez-dev/cashlog/internal/consolidate"
	"github.com/mbenitez-dev/cashlog/pkg/config"
	"github.com/mbenitez-dev/cashlog/pkg/cron"
)

var runImmediately bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the consolidation batch on a schedule",
	Long: `watch keeps the process alive and runs the consolidation batch on the
cron schedule from CASHLOG_SCHEDULE (default: hourly). Stop with SIGINT or
SIGTERM; a batch in flight finishes before shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if baseDir != "" {
			cfg.Paths.BaseDir = baseDir
		}

		svc, err := consolidate.NewService(cfg, nil, logger)
		if err != nil {
			return err
		}

		sched := cron.NewScheduler(svc, cfg.Schedule.Spec, logger)
		if err := sched.Start(); err != nil {
			return err
		}
		if runImmediately {
			sched.RunNow()
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		<-sched.Stop().Done()
		logger.Info("watch stopped")
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&baseDir, "base", "", "working tree root (overrides CASHLOG_BASE_DIR)")
	watchCmd.Flags().BoolVar(&runImmediately, "now", false, "run one batch immediately on startup")
	rootCmd.AddCommand(watchCmd)
}
