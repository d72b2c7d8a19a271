// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mbenitez-dev/cashlog/internal/consolidate"
)

// Scheduler runs the consolidation batch on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	service *consolidate.Service
	spec    string
	logger  *slog.Logger
}

// NewScheduler creates a scheduler for the given batch service.
func NewScheduler(service *consolidate.Service, spec string, logger *slog.Logger) *Scheduler {
	// Standard 5-field format, no seconds.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		service: service,
		spec:    spec,
		logger:  logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.runBatch)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers one batch outside the schedule.
func (s *Scheduler) RunNow() {
	go s.runBatch()
}

func (s *Scheduler) runBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("starting scheduled consolidation")
	report, err := s.service.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled consolidation failed", slog.Any("error", err))
		return
	}
	s.logger.Info("scheduled consolidation finished",
		slog.String("job_id", report.JobID.String()),
		slog.Int("files", len(report.Files)),
		slog.Int("records", report.TotalRecords()),
	)
}
