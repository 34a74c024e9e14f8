// Package cleanup sweeps expired credentials out of the store: password
// reset tokens past their TTL and sessions past their expiry. Nothing
// reads either once expired, so the sweep is purely hygienic, but it
// keeps the tables from growing without bound.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tabletophq/groupfinder/internal/domain"
	"github.com/tabletophq/groupfinder/internal/metrics"
	"github.com/tabletophq/groupfinder/internal/repository"
)

type Cleaner struct {
	tokens   repository.ResetTokenRepository
	sessions repository.SessionRepository
	logger   *slog.Logger
}

func NewCleaner(tokens repository.ResetTokenRepository, sessions repository.SessionRepository, logger *slog.Logger) *Cleaner {
	return &Cleaner{
		tokens:   tokens,
		sessions: sessions,
		logger:   logger.With("component", "cleanup"),
	}
}

// Sweep runs one purge pass. Failures are logged, not fatal — the next
// scheduled run retries.
func (c *Cleaner) Sweep(ctx context.Context) {
	start := time.Now()

	purgedTokens, err := c.tokens.DeleteOlderThan(ctx, start.Add(-domain.ResetTokenTTL))
	if err != nil {
		c.logger.ErrorContext(ctx, "purge reset tokens", "error", err)
	} else {
		metrics.TokensPurgedTotal.WithLabelValues("reset_token").Add(float64(purgedTokens))
	}

	purgedSessions, err := c.sessions.DeleteExpired(ctx, start)
	if err != nil {
		c.logger.ErrorContext(ctx, "purge sessions", "error", err)
	} else {
		metrics.TokensPurgedTotal.WithLabelValues("session").Add(float64(purgedSessions))
	}

	metrics.CleanupCycleDuration.Observe(time.Since(start).Seconds())
	c.logger.InfoContext(ctx, "cleanup sweep finished",
		"reset_tokens", purgedTokens,
		"sessions", purgedSessions,
		"duration", time.Since(start),
	)
}

// Start schedules Sweep on the given cron spec (e.g. "@hourly") and
// returns the running cron so the caller can Stop it on shutdown.
func (c *Cleaner) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	cr := cron.New()
	if _, err := cr.AddFunc(spec, func() { c.Sweep(ctx) }); err != nil {
		return nil, err
	}
	cr.Start()
	c.logger.Info("cleanup scheduled", "spec", spec)
	return cr, nil
}
