package service

import (
	"fmt"
	"time"

	"gigmatch/config"
	"gigmatch/internal/apperr"
	"gigmatch/internal/domain"
	"gigmatch/internal/repository"
)

// RateLimiter enforces the durable per-actor daily quotas on decisions and
// undos. Counting happens through atomic conditional increments in the quota
// repository, so it is race-safe under concurrent requests from one actor.
type RateLimiter struct {
	quotas *repository.QuotaRepository
	cfg    config.QuotaConfig
	now    func() time.Time
}

func NewRateLimiter(quotas *repository.QuotaRepository, cfg config.QuotaConfig) *RateLimiter {
	return &RateLimiter{quotas: quotas, cfg: cfg, now: time.Now}
}

func (l *RateLimiter) decisionLimit(role string) int {
	if role == domain.RoleVenue {
		return l.cfg.VenueDailyDecisions
	}
	return l.cfg.PerformerDailyDecisions
}

// AllowDecision consumes one decision from the actor's daily quota, or fails
// ResourceExhausted carrying the next reset time.
func (l *RateLimiter) AllowDecision(actorID uint, role string) error {
	now := l.now()
	limit := l.decisionLimit(role)
	ok, err := l.quotas.IncrementDecisions(actorID, repository.Day(now), limit)
	if err != nil {
		return apperr.Internal("quota check failed", err)
	}
	if !ok {
		return apperr.ResourceExhausted("decision_quota_exceeded",
			fmt.Sprintf("daily decision quota of %d reached", limit),
			repository.NextReset(now))
	}
	return nil
}

// AllowUndo consumes one undo from the actor's daily quota.
func (l *RateLimiter) AllowUndo(actorID uint) error {
	now := l.now()
	ok, err := l.quotas.IncrementUndos(actorID, repository.Day(now), l.cfg.DailyUndos)
	if err != nil {
		return apperr.Internal("quota check failed", err)
	}
	if !ok {
		return apperr.ResourceExhausted("undo_quota_exceeded",
			fmt.Sprintf("daily undo quota of %d reached", l.cfg.DailyUndos),
			repository.NextReset(now))
	}
	return nil
}
