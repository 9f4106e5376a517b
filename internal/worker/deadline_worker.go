package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/document-tracking/internal/domain"
)

// DeadlineSource lists documents due within a number of days.
type DeadlineSource interface {
	GetDocumentsNearDeadline(ctx context.Context, days int) ([]domain.Document, error)
}

// DeadlineWatcher periodically logs documents whose deadline is close.
type DeadlineWatcher struct {
	source   DeadlineSource
	logger   *zap.Logger
	interval time.Duration
	days     int
}

// NewDeadlineWatcher builds a watcher. A non-positive interval disables it.
func NewDeadlineWatcher(source DeadlineSource, logger *zap.Logger, interval time.Duration, days int) *DeadlineWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineWatcher{source: source, logger: logger, interval: interval, days: days}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *DeadlineWatcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		w.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep performs a single check and returns the number of open documents it logged.
func (w *DeadlineWatcher) Sweep(ctx context.Context) int {
	docs, err := w.source.GetDocumentsNearDeadline(ctx, w.days)
	if err != nil {
		w.logger.Warn("deadline sweep failed", zap.Error(err))
		return 0
	}
	logged := 0
	for _, doc := range docs {
		if doc.Status.IsTerminal() {
			continue
		}
		logged++
		w.logger.Info("document near deadline",
			zap.Int64("document_id", doc.ID),
			zap.String("process_number", doc.ProcessNumber),
			zap.Int64("current_area_id", doc.CurrentAreaID),
			zap.Timep("deadline", doc.Deadline))
	}
	return logged
}
