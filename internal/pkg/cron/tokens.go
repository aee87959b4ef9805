package cron

import (
	"context"
	"log/slog"
	"time"
)

// TokenPurger removes refresh tokens that can no longer be used.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type TokenJobs struct {
	purger TokenPurger
}

func NewTokenJobs(purger TokenPurger) *TokenJobs {
	return &TokenJobs{purger: purger}
}

func (j *TokenJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_expired_refresh_tokens", 6*time.Hour, j.PurgeExpiredRefreshTokens)
}

func (j *TokenJobs) PurgeExpiredRefreshTokens(ctx context.Context) error {
	n, err := j.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Purged expired refresh tokens", "count", n)
	}
	return nil
}
