package usecase

import (
	"context"
	"log/slog"
	"time"

	"TweetScanner/internal/domain"
	"TweetScanner/internal/ports"
)

// ScheduledScans re-ingests configured account timelines on a recurring
// basis, driven by the scheduler port.
type ScheduledScans struct {
	driver   ports.Scheduler
	ingestor *Ingestor
	accounts []string
	mode     domain.EnrichMode
	logger   *slog.Logger
}

// NewScheduledScans returns a helper to start/stop recurring scans.
func NewScheduledScans(driver ports.Scheduler, ingestor *Ingestor, accounts []string, mode domain.EnrichMode, logger *slog.Logger) *ScheduledScans {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduledScans{
		driver:   driver,
		ingestor: ingestor,
		accounts: accounts,
		mode:     mode,
		logger:   logger,
	}
}

// Start registers the scan job with the driver. Each trigger walks the
// configured accounts sequentially; one account's failure does not stop
// the rest.
func (s *ScheduledScans) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil || len(s.accounts) == 0 {
		return nil
	}

	job := func(trigger time.Time) {
		for _, account := range s.accounts {
			report, err := s.ingestor.IngestUser(ctx, account, s.mode)
			if err != nil {
				s.logger.Error("scheduled scan failed", "account", account, "error", err)
				continue
			}
			persisted, duplicates, invalid, errored := report.Counts()
			s.logger.Info("scheduled scan done",
				"account", account,
				"trigger", trigger.Format(time.RFC3339),
				"persisted", persisted,
				"duplicates", duplicates,
				"invalid", invalid,
				"errors", errored)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *ScheduledScans) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
