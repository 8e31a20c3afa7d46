package db

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RequestCleaner periodically removes finished relay requests older than the retention period.
type RequestCleaner struct {
	db              *DB
	logger          zerolog.Logger
	stopCh          chan struct{}
	stopOnce        sync.Once
	cleanupInterval time.Duration
	retentionPeriod time.Duration
	now             func() time.Time
}

// NewRequestCleaner creates a new request cleaner
func NewRequestCleaner(database *DB, cleanupInterval, retentionPeriod time.Duration, logger zerolog.Logger) *RequestCleaner {
	return &RequestCleaner{
		db:              database,
		cleanupInterval: cleanupInterval,
		retentionPeriod: retentionPeriod,
		logger:          logger.With().Str("component", "request_cleaner").Logger(),
		stopCh:          make(chan struct{}),
		now:             time.Now,
	}
}

// Start performs one cleanup and then cleans on every interval until ctx is
// cancelled or Stop is called.
func (rc *RequestCleaner) Start(ctx context.Context) {
	rc.logger.Info().
		Dur("cleanup_interval", rc.cleanupInterval).
		Dur("retention_period", rc.retentionPeriod).
		Msg("starting request cleaner")

	if _, err := rc.PerformCleanup(); err != nil {
		rc.logger.Error().Err(err).Msg("failed to perform initial cleanup")
	}

	ticker := time.NewTicker(rc.cleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				rc.logger.Info().Msg("context cancelled, stopping request cleaner")
				return
			case <-rc.stopCh:
				rc.logger.Info().Msg("stop signal received, stopping request cleaner")
				return
			case <-ticker.C:
				if _, err := rc.PerformCleanup(); err != nil {
					rc.logger.Error().Err(err).Msg("failed to perform scheduled cleanup")
				}
			}
		}
	}()
}

// Stop gracefully stops the request cleaner. Repeated calls are no-ops.
func (rc *RequestCleaner) Stop() {
	rc.stopOnce.Do(func() { close(rc.stopCh) })
}

// PerformCleanup deletes expired finished requests and returns how many went.
func (rc *RequestCleaner) PerformCleanup() (int64, error) {
	start := time.Now()
	cutoff := rc.now().Add(-rc.retentionPeriod)

	deleted, err := rc.db.DeleteFinishedBefore(cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		rc.checkpointWAL()
		rc.logger.Info().
			Int64("deleted_count", deleted).
			Dur("duration", time.Since(start)).
			Msg("request cleanup completed")
	} else {
		rc.logger.Debug().Msg("request cleanup completed - no requests to delete")
	}
	return deleted, nil
}

// checkpointWAL truncates the WAL so it does not grow without bound.
func (rc *RequestCleaner) checkpointWAL() {
	if err := rc.db.Checkpoint(); err != nil {
		rc.logger.Warn().Err(err).Msg("failed to checkpoint WAL")
	}
}
