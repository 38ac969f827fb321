package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"droseonline/internal/config"
	"droseonline/internal/infra"
	"droseonline/internal/repository"
	"droseonline/internal/router"
	"droseonline/internal/service"
	"droseonline/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background workers are wired here (composition root) so the pool and
	// cron have full access to all infrastructure dependencies.
	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	attendanceRepo := repository.NewAttendanceRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	userRepo := repository.NewUserRepository(db)

	emailWorker := worker.NewEmailWorker(attendanceRepo, userRepo, mailer, smtpCB)
	worker.StartWorkerPool(ctx, rdb, emailWorker, cfg.WorkerPoolSize)

	// Posting cron auto-posts completed sessions once the grace period passed.
	attendanceSvc := service.NewAttendanceService(
		attendanceRepo, groupRepo, courseRepo, txRepo, counterRepo,
		dispatcher, cfg.BillableStatusSet(), cfg.Currency,
	)
	worker.StartPostingCron(ctx, worker.PostingCronConfig{
		AttendanceRepo: attendanceRepo,
		Poster:         attendanceSvc,
		GracePeriod:    time.Duration(cfg.PostingGraceMinutes) * time.Minute,
		AlreadyPosted:  service.ErrRevenueAlreadyPosted,
	})

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("DroseOnline backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
