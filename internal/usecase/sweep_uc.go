// File: internal/usecase/sweep_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/domain/ports/repository"
	"classroom-subscription/internal/infra/metrics"
)

// RetentionPolicy holds the time thresholds the retention sweep applies,
// all measured in elapsed time since account creation. Ordering must be
// FirstWarningAfter < FinalWarningAfter < DeleteAfter (validated at config
// load). PendingSignupTTL bounds how long an unpaid signup survives.
type RetentionPolicy struct {
	FirstWarningAfter time.Duration
	FinalWarningAfter time.Duration
	DeleteAfter       time.Duration
	PendingSignupTTL  time.Duration
}

// RetentionReport summarizes one retention sweep cycle.
type RetentionReport struct {
	SignupsDeleted int
	FirstWarnings  int
	FinalWarnings  int
	Purged         int
}

// SweepUseCase owns the two periodic scans: the hourly expiry transition and
// the daily retention pass. All sweep state (warning flags, timestamps)
// lives on the persisted account rows, never in process memory, so a
// restart cannot lose or duplicate warnings.
type SweepUseCase struct {
	accounts repository.AccountRepository
	signups  repository.SignupRepository
	txs      repository.TransactionRepository
	classes  repository.ClassRepository
	tm       repository.TransactionManager
	objects  adapter.ObjectStore
	notify   adapter.NotificationSink
	policy   RetentionPolicy
	log      *zerolog.Logger
}

func NewSweepUseCase(
	accounts repository.AccountRepository,
	signups repository.SignupRepository,
	txs repository.TransactionRepository,
	classes repository.ClassRepository,
	tm repository.TransactionManager,
	objects adapter.ObjectStore,
	notify adapter.NotificationSink,
	policy RetentionPolicy,
	logger *zerolog.Logger,
) *SweepUseCase {
	l := logger.With().Str("component", "SweepUseCase").Logger()
	return &SweepUseCase{
		accounts: accounts,
		signups:  signups,
		txs:      txs,
		classes:  classes,
		tm:       tm,
		objects:  objects,
		notify:   notify,
		policy:   policy,
		log:      &l,
	}
}

// ExpireOverdue flips every active account whose expiry has passed to
// pending. The transition is a single conditional update in the storage
// layer, so it cannot corrupt a renewal confirmation running concurrently.
// No notification accompanies the transition.
func (uc *SweepUseCase) ExpireOverdue(ctx context.Context) (int, error) {
	n, err := uc.accounts.MarkExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddAccountsExpired(n)
		uc.log.Info().Int("count", n).Msg("expired accounts moved to pending")
	}
	return n, nil
}

// EnforceRetention runs the daily pass: drop stale pending signups, issue
// deletion warnings, and purge accounts past the deletion threshold.
func (uc *SweepUseCase) EnforceRetention(ctx context.Context) (RetentionReport, error) {
	var report RetentionReport
	now := time.Now()

	dropped, err := uc.signups.DeleteOlderThan(ctx, nil, now.Add(-uc.policy.PendingSignupTTL))
	if err != nil {
		uc.log.Error().Err(err).Msg("stale signup cleanup failed")
	} else if dropped > 0 {
		report.SignupsDeleted = dropped
		uc.log.Info().Int("count", dropped).Msg("stale pending signups deleted")
	}

	candidates, err := uc.accounts.ListRetentionCandidates(ctx, nil, now)
	if err != nil {
		return report, err
	}
	for _, account := range candidates {
		age := now.Sub(account.CreatedAt)

		if age >= uc.policy.DeleteAfter || uc.expiredLongAgo(account, now) {
			if err := uc.purge(ctx, account); err != nil {
				uc.log.Error().Err(err).Str("account_id", account.ID).Msg("purge failed")
				continue
			}
			report.Purged++
			continue
		}
		// both warnings can fire in one cycle if the account aged past both
		// thresholds between sweeps
		if age >= uc.policy.FirstWarningAfter && !account.FirstWarningSent {
			if uc.warn(ctx, account, false) {
				report.FirstWarnings++
			}
		}
		if age >= uc.policy.FinalWarningAfter && !account.FinalWarningSent {
			if uc.warn(ctx, account, true) {
				report.FinalWarnings++
			}
		}
	}
	metrics.AddDeletionWarnings(report.FirstWarnings + report.FinalWarnings)
	return report, nil
}

func (uc *SweepUseCase) expiredLongAgo(account *model.Account, now time.Time) bool {
	return account.ExpiresAt != nil && now.Sub(*account.ExpiresAt) >= uc.policy.DeleteAfter
}

// warn sets the flag first and only notifies when this sweep actually won
// the conditional update, so redundant cycles and concurrent replicas never
// send the same warning twice. Flags are monotone until purge or renewal.
func (uc *SweepUseCase) warn(ctx context.Context, account *model.Account, final bool) bool {
	won, err := uc.accounts.SetWarningFlag(ctx, nil, account.ID, final)
	if err != nil {
		uc.log.Error().Err(err).Str("account_id", account.ID).Msg("set warning flag failed")
		return false
	}
	if !won {
		return false
	}
	kind := adapter.TemplateDeletionWarning
	if final {
		kind = adapter.TemplateFinalWarning
	}
	if err := uc.notify.Send(ctx, account.Email, kind, map[string]string{"name": account.Name}); err != nil {
		uc.log.Warn().Err(err).Str("account_id", account.ID).Msg("deletion warning notification failed")
	}
	return true
}

// purge removes an account and everything that references it: transactions,
// roster entries, submissions (rows now, stored objects best-effort after
// commit), then the account row itself.
func (uc *SweepUseCase) purge(ctx context.Context, account *model.Account) error {
	var objectIDs []string
	err := uc.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		subs, err := uc.classes.ListSubmissionsByStudent(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		for _, s := range subs {
			if s.ObjectID != "" {
				objectIDs = append(objectIDs, s.ObjectID)
			}
		}
		if _, err := uc.txs.DeleteByAccount(ctx, tx, account.ID); err != nil {
			return err
		}
		if _, err := uc.classes.RemoveStudentEverywhere(ctx, tx, account.ID); err != nil {
			return err
		}
		if _, err := uc.classes.DeleteSubmissionsByStudent(ctx, tx, account.ID); err != nil {
			return err
		}
		return uc.accounts.Delete(ctx, tx, account.ID)
	})
	if err != nil {
		return err
	}

	for _, id := range objectIDs {
		if err := uc.objects.DeleteObject(ctx, id); err != nil {
			uc.log.Warn().Err(err).Str("object_id", id).Msg("remote object delete failed")
		}
	}
	metrics.IncAccountsPurged()
	uc.log.Info().Str("account_id", account.ID).Str("email", account.Email).Msg("account purged")

	if err := uc.notify.Send(ctx, account.Email, adapter.TemplateAccountDeleted, map[string]string{"name": account.Name}); err != nil {
		uc.log.Warn().Err(err).Str("account_id", account.ID).Msg("account-deleted notification failed")
	}
	return nil
}
