// cmd/backfill/main.go — recomputes PresentCount and SessionRevenue for every
// unposted attendance session from its records and price snapshot. Posted
// sessions are never touched: their numbers already live in the ledger.
// Usage: go run ./cmd/backfill [-dry-run]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"droseonline/internal/config"
	"droseonline/internal/infra"
	"droseonline/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	billable := cfg.BillableStatusSet()
	ctx := context.Background()

	var sessions []model.Attendance
	if err := db.WithContext(ctx).
		Preload("Records").
		Where("revenue_posted_at IS NULL").
		Find(&sessions).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to load sessions")
	}

	changed := 0
	for i := range sessions {
		s := &sessions[i]

		count := 0
		for _, r := range s.Records {
			if billable[r.Status] {
				count++
			}
		}
		revenue := s.PricePerSession.Mul(decimal.NewFromInt(int64(count)))

		if count == s.PresentCount && revenue.Equal(s.SessionRevenue) {
			continue
		}
		changed++
		log.Info().
			Str("session", s.Code).
			Int("present_count", count).
			Str("revenue", revenue.StringFixed(2)).
			Msg("session out of sync")

		if *dryRun {
			continue
		}
		if err := db.WithContext(ctx).Model(&model.Attendance{}).
			Where("id = ?", s.ID).
			Updates(map[string]interface{}{
				"present_count":   count,
				"session_revenue": revenue,
			}).Error; err != nil {
			log.Fatal().Err(err).Str("session", s.Code).Msg("update failed")
		}
	}

	log.Info().
		Int("scanned", len(sessions)).
		Int("changed", changed).
		Bool("dry_run", *dryRun).
		Msg("backfill complete")
}
