package worker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jwalitptl/prescription-api/pkg/logger"
	"github.com/jwalitptl/prescription-api/pkg/metrics"
)

// StagingSweeper removes staged prescription images that outlived their
// analysis request. Under normal operation the service deletes every staged
// file itself; the sweeper is a backstop for files orphaned by a crash or
// an unclean shutdown.
type StagingSweeper struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewStagingSweeper(dir string, maxAge, interval time.Duration, m *metrics.Metrics, log *logger.Logger) *StagingSweeper {
	return &StagingSweeper{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
		metrics:  m,
		logger:   log,
	}
}

func (w *StagingSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := w.Sweep()
			if err != nil {
				w.logger.Warn(err, "staging sweep failed")
				continue
			}
			if swept > 0 {
				w.logger.WithFields(map[string]interface{}{
					"swept":   swept,
					"dir":     w.dir,
					"max_age": w.maxAge.String(),
				}).Info("removed orphaned staged files")
			}
		}
	}
}

// Sweep deletes staged files older than maxAge and returns how many were
// removed. A missing staging directory is not an error; nothing has been
// staged yet.
func (w *StagingSweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-w.maxAge)
	swept := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(w.dir, entry.Name())); err != nil {
			w.logger.Warn(err, "failed to remove staged file")
			continue
		}
		swept++
	}

	w.metrics.AddSweptFiles(swept)
	return swept, nil
}
