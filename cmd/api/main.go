package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/jubaworks/juba/internal/auth"
	"github.com/jubaworks/juba/internal/config"
	"github.com/jubaworks/juba/internal/db"
	"github.com/jubaworks/juba/internal/engine"
	"github.com/jubaworks/juba/internal/httpapi"
	"github.com/jubaworks/juba/internal/notify"
	"github.com/jubaworks/juba/internal/payments"
	"github.com/jubaworks/juba/internal/profilesvc"
	"github.com/jubaworks/juba/internal/store/postgres"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	st := postgres.New(pool)

	// Events go through asynq when Redis is configured; otherwise they are
	// only logged. Either way a dispatcher failure never blocks the engine.
	var dispatcher engine.Dispatcher
	if cfg.RedisAddr != "" {
		asynqDispatcher := notify.NewAsynqDispatcher(cfg.RedisAddr)
		defer asynqDispatcher.Close()
		dispatcher = asynqDispatcher

		mailer := notify.NewMailer(notify.MailerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
		worker := notify.NewWorker(cfg.RedisAddr, mailer, log)
		go func() {
			if err := worker.Run(); err != nil {
				log.Error().Err(err).Msg("notification worker stopped")
			}
		}()
		defer worker.Shutdown()
	} else {
		dispatcher = notify.LogDispatcher{Log: log.With().Str("component", "events").Logger()}
	}

	jobs := engine.NewJobStore(st, dispatcher, cfg.RetentionWindow, log)
	apps := engine.NewApplicationRegistry(st, dispatcher, log)
	ledger := engine.NewTransactionLedger(st, dispatcher, log)
	coordinator := engine.NewMatchingCoordinator(st, dispatcher, log)
	processor := payments.NewSimulated(cfg.PaymentFailureRate)

	authHandler := auth.NewHandler(pool, cfg.JWTSecret)
	profileHandler := profilesvc.NewHandler(st)
	api := httpapi.NewHandler(jobs, apps, ledger, coordinator, processor, st, log.With().Str("component", "http").Logger())

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	api.Register(e, authHandler, profileHandler, cfg.JWTSecret)

	log.Info().Str("port", cfg.Port).Msg("api server listening")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}
