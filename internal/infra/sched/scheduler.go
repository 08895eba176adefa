package sched

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"classroom-subscription/internal/infra/metrics"
	"classroom-subscription/internal/infra/redis"
	"classroom-subscription/internal/usecase"
)

const (
	expirySpec    = "0 * * * *" // hourly, on the hour
	retentionSpec = "0 0 * * *" // daily, midnight

	expiryLockKey    = "sweep:lock:expiry"
	retentionLockKey = "sweep:lock:retention"

	expiryTimeout    = 5 * time.Minute
	retentionTimeout = 30 * time.Minute
)

// Scheduler runs the two lifecycle sweeps on cron schedules. A redis lock
// elects a leader per cycle so multiple app instances never sweep twice.
type Scheduler struct {
	cron   *cron.Cron
	sweeps *usecase.SweepUseCase
	locker redis.Locker
	log    *zerolog.Logger
}

func NewScheduler(sweeps *usecase.SweepUseCase, locker redis.Locker, logger *zerolog.Logger) *Scheduler {
	l := logger.With().Str("component", "Scheduler").Logger()
	return &Scheduler{
		cron:   cron.New(),
		sweeps: sweeps,
		locker: locker,
		log:    &l,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(expirySpec, s.runExpiry); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(retentionSpec, s.runRetention); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("expiry", expirySpec).Str("retention", retentionSpec).Msg("sweep scheduler started")
	return nil
}

// Stop halts scheduling and waits for any in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("sweep scheduler stopped")
}

func (s *Scheduler) runExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), expiryTimeout)
	defer cancel()

	s.withLock(ctx, expiryLockKey, expiryTimeout, func() {
		start := time.Now()
		n, err := s.sweeps.ExpireOverdue(ctx)
		metrics.ObserveSweepDuration("expiry", time.Since(start).Seconds())
		if err != nil {
			s.log.Error().Err(err).Msg("expiry sweep failed")
			return
		}
		if n > 0 {
			s.log.Info().Int("count", n).Msg("accounts expired")
		}
	})
}

func (s *Scheduler) runRetention() {
	ctx, cancel := context.WithTimeout(context.Background(), retentionTimeout)
	defer cancel()

	s.withLock(ctx, retentionLockKey, retentionTimeout, func() {
		start := time.Now()
		report, err := s.sweeps.EnforceRetention(ctx)
		metrics.ObserveSweepDuration("retention", time.Since(start).Seconds())
		if err != nil {
			s.log.Error().Err(err).Msg("retention sweep failed")
			return
		}
		s.log.Info().
			Int("signups_deleted", report.SignupsDeleted).
			Int("first_warnings", report.FirstWarnings).
			Int("final_warnings", report.FinalWarnings).
			Int("purged", report.Purged).
			Msg("retention sweep finished")
	})
}

// withLock runs fn only when this instance wins the leader lock. Losing is
// the normal multi-instance case and is logged at debug.
func (s *Scheduler) withLock(ctx context.Context, key string, ttl time.Duration, fn func()) {
	token, ok, err := s.locker.TryLock(ctx, key, ttl)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("sweep lock error")
		return
	}
	if !ok {
		s.log.Debug().Str("key", key).Msg("sweep lock held elsewhere, skipping cycle")
		return
	}
	defer func() {
		if err := s.locker.Unlock(ctx, key, token); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("sweep lock release failed")
		}
	}()
	fn()
}
