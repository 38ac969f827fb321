package worker

// posting_cron.go
// Background goroutine that periodically posts revenue for completed sessions
// a teacher marked but never locked. The grace period gives teachers a window
// to correct records before the numbers become ledger entries.

import (
	"context"
	"errors"
	"time"

	"droseonline/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	postingTickInterval = 60 * time.Second
	postingBatchSize    = 25
)

// RevenuePoster is the slice of the attendance service the cron needs.
type RevenuePoster interface {
	PostSessionRevenue(ctx context.Context, id uuid.UUID) error
}

// PostingCronConfig holds the cron's dependencies.
type PostingCronConfig struct {
	AttendanceRepo repository.AttendanceRepository
	Poster         RevenuePoster
	GracePeriod    time.Duration
	// AlreadyPosted lets the cron treat a lost race as success.
	AlreadyPosted error
}

// StartPostingCron launches a goroutine that ticks every minute and posts
// revenue for unposted completed sessions older than the grace period.
// It respects the context for graceful shutdown.
func StartPostingCron(ctx context.Context, cfg PostingCronConfig) {
	go func() {
		ticker := time.NewTicker(postingTickInterval)
		defer ticker.Stop()

		log.Info().Dur("grace", cfg.GracePeriod).Msg("posting_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("posting_cron: shutting down")
				return
			case <-ticker.C:
				processPostings(ctx, cfg)
			}
		}
	}()
}

func processPostings(ctx context.Context, cfg PostingCronConfig) {
	cutoff := time.Now().Add(-cfg.GracePeriod)
	sessions, err := cfg.AttendanceRepo.ListUnposted(ctx, cutoff, postingBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("posting_cron: failed to query unposted sessions")
		return
	}
	if len(sessions) == 0 {
		return
	}

	log.Info().Int("count", len(sessions)).Msg("posting_cron: posting session revenue")

	for i := range sessions {
		id := sessions[i].ID
		err := cfg.Poster.PostSessionRevenue(ctx, id)
		switch {
		case err == nil:
			log.Info().
				Str("attendance_id", id.String()).
				Str("revenue", sessions[i].SessionRevenue.StringFixed(2)).
				Msg("posting_cron: revenue posted")
		case cfg.AlreadyPosted != nil && errors.Is(err, cfg.AlreadyPosted):
			// Someone beat us to it — the marker did its job.
		default:
			log.Error().Err(err).Str("attendance_id", id.String()).Msg("posting_cron: posting failed")
		}
	}
}
