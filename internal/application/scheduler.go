package application

import (
	"context"
	"log/slog"
	"time"
)

// ReportScheduler triggers report generation on a fixed interval, replacing
// the external cron trigger of earlier deployments. A failed run is logged
// and the loop keeps going; the next tick tries again.
type ReportScheduler struct {
	reports  *ReportService
	interval time.Duration
}

// NewReportScheduler creates a ReportScheduler. The caller should not start
// it when the interval is zero (scheduling disabled).
func NewReportScheduler(reports *ReportService, interval time.Duration) *ReportScheduler {
	return &ReportScheduler{
		reports:  reports,
		interval: interval,
	}
}

// Start runs the scheduling loop and blocks until the context is canceled.
func (s *ReportScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("report scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("report scheduler stopped")
			return
		case <-ticker.C:
			if _, _, err := s.reports.Generate(ctx); err != nil {
				slog.Error("scheduled report generation failed", "error", err)
			}
		}
	}
}
