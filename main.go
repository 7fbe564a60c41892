package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessgames/internal/cache"
	"github.com/robalobadob/guessgames/internal/config"
	"github.com/robalobadob/guessgames/internal/database"
	"github.com/robalobadob/guessgames/internal/game"
	"github.com/robalobadob/guessgames/internal/httpserver"
	"github.com/robalobadob/guessgames/internal/notify"
	"github.com/robalobadob/guessgames/internal/service"
	"github.com/robalobadob/guessgames/internal/store"
	"github.com/robalobadob/guessgames/internal/tasks"
	"github.com/robalobadob/guessgames/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bank, err := words.Load(cfg.WordBankFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word bank")
	}
	picker, err := words.NewPicker(bank, cfg.RandomSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed target generator")
	}
	nw, nd := picker.Stats()
	log.Info().Int("words", nw).Int("digits", nd).Msg("word bank loaded")

	dsn := cfg.DatabasePath
	if cfg.DatabaseType != "sqlite" {
		dsn = cfg.DatabaseURL
	}
	db, err := database.Open(cfg.DatabaseType, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.DatabaseType).Msg("failed to open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	st := store.NewSQL(db)

	var c cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rc.Close()
		c = rc
		log.Info().Msg("cache: redis")
	}

	var mailer notify.Mailer = notify.Log{}
	if cfg.SESFromEmail != "" {
		ses, err := notify.NewSES(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialise SES")
		}
		mailer = ses
	} else {
		log.Info().Msg("email: SES_FROM_EMAIL not set, reminders are logged only")
	}

	queue := tasks.NewQueue(64)
	queue.Start(ctx)

	svc := service.New(st, c, picker, queue)
	reminder := &notify.Reminder{Store: st, Mailer: mailer}

	go tasks.Every(ctx, cfg.ReminderInterval, "send_reminder", func(ctx context.Context) error {
		rep, err := reminder.Run(ctx)
		if err == nil {
			log.Info().Int("sent", rep.Sent).Int("failed", rep.Failed).Msg("reminders sent")
		}
		return err
	})
	go tasks.Every(ctx, cfg.CacheRefreshInterval, "cache_average_attempts", func(ctx context.Context) error {
		for _, k := range game.Kinds {
			if err := svc.RefreshAverage(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpserver.New(svc, reminder, cfg.ClientOrigin).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("db", cfg.DatabaseType).Msg("starting guessgames server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	queue.Wait()
}
