package worker

import (
	"context"
	"time"

	"fieldops/internal/logger"
	"fieldops/internal/storage"

	"go.uber.org/zap"
)

// SweepWorker периодически дочищает файлы-сироты, оставшиеся после
// неудачной компенсации "файл записан - БД не обновилась"
type SweepWorker struct {
	files    *storage.FileStore
	interval time.Duration
}

func NewSweepWorker(files *storage.FileStore, interval *time.Duration) *SweepWorker {
	var intervalToSet time.Duration
	if interval == nil {
		intervalToSet = 10 * time.Minute
	} else {
		intervalToSet = *interval
	}
	return &SweepWorker{
		files:    files,
		interval: intervalToSet,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Фоновая зачистка файлов-сирот", zap.Time("started_at", time.Now()))
			w.Sweep()
		case <-ctx.Done():
			logger.Info("Worker: Фоновая зачистка останавливается")
			return
		}
	}
}

func (w *SweepWorker) Sweep() {
	start := time.Now()

	removed := w.files.SweepOrphans()
	left := w.files.OrphanCount()

	logger.Info(
		"Worker: Завершение зачистки",
		zap.Duration("ms", time.Since(start)),
		zap.Int("removed", removed),
		zap.Int("left", left),
	)
}
