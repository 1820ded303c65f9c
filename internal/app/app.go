// Package app wires configuration, logging, storage, providers, and the
// Telegram runtime into a running bot.
package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"universebot/internal/broadcast"
	"universebot/internal/config"
	"universebot/internal/feature"
	"universebot/internal/logger"
	"universebot/internal/provider"
	"universebot/internal/session"
	"universebot/internal/stats"
	"universebot/internal/storage"
	"universebot/internal/telegram"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
	usageFlushPeriod  = time.Minute
)

// Run loads configuration, bootstraps the infrastructure, and polls for
// Telegram updates until an interrupt arrives.
func Run() error {
	cfgPath := os.Getenv(configEnvVar)
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("app: failed to load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Profile:     cfg.Logging.Profile,
		DebugSample: cfg.Logging.DebugSample,
		Dir:         cfg.Logging.Dir,
		File:        cfg.Logging.File,
	}); err != nil {
		return fmt.Errorf("app: logger init failed: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	startedAt := time.Now()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	counters := stats.New()
	users := session.NewRegistry()
	conversations := session.NewConversations()

	var store *storage.Store
	if cfg.PersistenceEnabled() {
		if err := storage.RunMigrations(cfg.Database); err != nil {
			return fmt.Errorf("app: migrations failed: %w", err)
		}
		store, err = storage.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("app: database initialization failed: %w", err)
		}
		defer func() {
			flushUsage(context.Background(), store, counters)
			if err := store.Close(); err != nil {
				logger.Error(context.Background(), "db", "db.close",
					slog.String("err", err.Error()),
				)
			}
		}()
	} else {
		logger.Info(ctx, "db", "db.disabled")
	}

	if !cfg.AdminEnabled() {
		logger.Warn(ctx, "app", "admin.disabled")
	}

	bot, err := telegram.NewBot(cfg)
	if err != nil {
		return err
	}

	sender := telegram.NewSender(bot)
	resolver := provider.NewResolver(provider.NewClient(nil))
	endpoints := feature.DefaultEndpoints()
	chains := feature.BuildChains(endpoints, feature.ChainOptions{
		CatAPIKey:   cfg.Providers.CatAPIKey,
		SnapshotTTL: time.Duration(cfg.Providers.CacheTTLSeconds) * time.Second,
	})
	service := feature.New(sender, resolver, chains, endpoints, counters, users)
	if store != nil {
		service.SetUsageSource(store)
	}

	engine := broadcast.New(sender, time.Duration(cfg.Broadcast.DelayMS)*time.Millisecond)
	flow := telegram.NewBroadcastFlow(engine, users, sender, cfg.Telegram.AdminID)

	handlers := telegram.NewHandlers(service, conversations, flow, cfg.Telegram.AdminID)
	registry := telegram.NewRegistry()
	handlers.Register(registry)

	if store != nil {
		go flushLoop(ctx, store, counters)
	}

	logger.Info(ctx, "app", "ready",
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	err = telegram.Run(ctx, bot, cfg, registry, handlers)

	logger.Info(context.Background(), "app", "shutdown",
		slog.Duration("uptime", logger.RoundMS(time.Since(startedAt))),
	)
	return err
}

// flushLoop periodically drains in-memory usage counters into the store.
func flushLoop(ctx context.Context, store *storage.Store, counters *stats.Counters) {
	ticker := time.NewTicker(usageFlushPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flushUsage(ctx, store, counters)
		}
	}
}

func flushUsage(ctx context.Context, store *storage.Store, counters *stats.Counters) {
	counts := counters.Drain()
	if len(counts) == 0 {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := store.RecordUsage(flushCtx, counts); err != nil {
		logger.Warn(ctx, "db", "usage.flush.fail",
			slog.Int("features", len(counts)),
			slog.String("err", err.Error()),
		)
	}
}
