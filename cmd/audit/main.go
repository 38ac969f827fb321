// cmd/audit/main.go — detects (and with -fix, repairs) drift between
// attendance sessions, the financial ledger, and the aggregate counters.
// Usage: go run ./cmd/audit [-fix]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"droseonline/internal/config"
	"droseonline/internal/infra"
	"droseonline/internal/repository"
	"droseonline/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	fix := flag.Bool("fix", false, "repair drift instead of only reporting it")
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

	attendanceRepo := repository.NewAttendanceRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	// No dispatcher: the audit CLI never sends mails.
	attendanceSvc := service.NewAttendanceService(
		attendanceRepo, groupRepo, courseRepo, txRepo, counterRepo,
		nil, cfg.BillableStatusSet(), cfg.Currency,
	)
	auditSvc := service.NewAuditService(attendanceRepo, groupRepo, courseRepo, attendanceSvc)

	ctx := context.Background()
	var report *service.AuditReport
	if *fix {
		report, err = auditSvc.Repair(ctx)
	} else {
		report, err = auditSvc.Detect(ctx)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("audit failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("failed to encode report")
	}

	if len(report.Findings) > 0 && !*fix {
		os.Exit(1) // drift found — useful for cron alerting
	}
}
