package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/soaringjerry/valoracion/internal/api"
	"github.com/soaringjerry/valoracion/internal/config"
	"github.com/soaringjerry/valoracion/internal/logging"
	"github.com/soaringjerry/valoracion/internal/middleware"
	"github.com/soaringjerry/valoracion/internal/notify"
	"github.com/soaringjerry/valoracion/internal/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "valoracion:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, lerr := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if lerr != nil {
		logger.Warn().Err(lerr).Msg("logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("close store")
		}
	}()

	if cfg.UsingDevSecret() {
		logger.Warn().Msg("JWT_SECRET not set, signing tokens with the development secret")
	}
	codec, err := middleware.NewJWTCodec(cfg.JWTSecret)
	if err != nil {
		return err
	}
	auth := services.NewAuthService(store, codec, logger)
	auth.SetBcryptCost(cfg.BcryptCost)
	if _, err := auth.EnsureDefaultAccount(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	publisher := newPublisher(cfg, logger)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("close publisher")
		}
	}()

	reviews := services.NewReviewService(store, publisher, logger)
	reviews.SetMaxCommentLength(cfg.MaxCommentLength)

	router := api.NewRouter(api.Config{
		Auth:             auth,
		Reviews:          reviews,
		DB:               store,
		Logger:           logger,
		AllowedOrigins:   cfg.AllowedOrigins,
		StaticDir:        cfg.StaticDir,
		MaxCommentLength: cfg.MaxCommentLength,
		Commit:           cfg.Commit,
		BuildTime:        cfg.BuildTime,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("db_driver", cfg.DBDriver).Str("commit", cfg.Commit).Msg("valoracion server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newPublisher(cfg config.Config, logger zerolog.Logger) notify.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info().Msg("KAFKA_BROKERS not set, review events disabled")
		return notify.Nop{}
	}
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing review events to kafka")
	return notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
}
