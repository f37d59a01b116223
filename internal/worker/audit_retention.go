package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/prescription-api/internal/repository"
	"github.com/jwalitptl/prescription-api/pkg/logger"
)

// AuditRetentionWorker prunes extraction audit rows past their retention
// window. Only runs when an audit repository is configured.
type AuditRetentionWorker struct {
	repo            repository.ExtractionAuditRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewAuditRetentionWorker(repo repository.ExtractionAuditRepository, retentionDays int, cleanupInterval time.Duration, log *logger.Logger) *AuditRetentionWorker {
	return &AuditRetentionWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          log,
	}
}

func (w *AuditRetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Warn(err, "audit retention cleanup failed")
			}
		}
	}
}

func (w *AuditRetentionWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.Cleanup(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup extraction audits: %w", err)
	}

	if rows > 0 {
		w.logger.WithFields(map[string]interface{}{
			"removed": rows,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("pruned expired extraction audits")
	}
	return nil
}
