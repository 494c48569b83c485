package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/workload-api/pkg/jobs"
	"github.com/noah-isme/workload-api/pkg/storage"
)

const jobCleanupExports = "cleanup-exports"

type exportCleaner interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// startJanitor periodically removes expired export files. Only local storage
// needs it; object stores rely on bucket lifecycle rules.
func startJanitor(ctx context.Context, store storage.ObjectStore, retention time.Duration, logger *zap.Logger) (*jobs.Queue, error) {
	cleaner, ok := store.(exportCleaner)
	if !ok || retention <= 0 {
		return nil, nil
	}

	queue := jobs.NewQueue("janitor", func(_ context.Context, job jobs.Job) error {
		if job.Type != jobCleanupExports {
			return nil
		}
		removed, err := cleaner.CleanupOlderThan(retention)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logger.Info("expired exports removed", zap.Int("count", len(removed)))
		}
		return nil
	}, jobs.QueueConfig{Workers: 1, Logger: logger})

	queue.Start(ctx)
	interval := retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	if err := queue.Every(interval, jobCleanupExports, nil); err != nil {
		queue.Stop()
		return nil, fmt.Errorf("schedule export cleanup: %w", err)
	}
	return queue, nil
}
