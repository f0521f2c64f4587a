package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ratatoskr/internal/adapter/health"
	"ratatoskr/internal/adapter/memory"
	"ratatoskr/internal/adapter/openai"
	"ratatoskr/internal/adapter/redis"
	"ratatoskr/internal/adapter/sqlite"
	"ratatoskr/internal/adapter/telegram"
	"ratatoskr/internal/adapter/users"
	"ratatoskr/internal/config"
	"ratatoskr/internal/domain"
	"ratatoskr/internal/logging"
	"ratatoskr/internal/usecase/capability"
	"ratatoskr/internal/usecase/chat"
	"ratatoskr/internal/usecase/history"
	"ratatoskr/internal/usecase/pipeline"
)

type kvStore interface {
	domain.KeyValueStore
	domain.Pinger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	store, closer, err := openStore(cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer func() { _ = closer.Close() }()

	userRepo := newUserRepository(cfg, store)

	openAIClient := openai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
	chatSvc := chat.NewService(openAIClient, cfg)
	historyRepo := history.NewRepository(store, cfg.HistoryLimit)
	registry := capability.NewRegistry(chatSvc, openAIClient, historyRepo)

	handler, err := pipeline.New(pipeline.Options{
		Admin:        cfg.AdminUsername,
		Users:        userRepo,
		History:      historyRepo,
		Embedder:     openAIClient,
		Capabilities: registry.Capabilities,
		Fallback:     registry.Fallback,
		ScoringLimit: cfg.ScoringConcurrency,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to build pipeline", zap.Error(err))
	}

	bot, err := telegram.NewBot(cfg, handler, logger)
	if err != nil {
		logger.Fatal("failed to init telegram bot", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return health.NewServer(cfg.HealthAddr, store, logger).Run(gctx) })

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			logger.Info("shutdown", zap.Error(err))
			return
		}
		logger.Fatal("bot stopped with error", zap.Error(err))
	}
}

func openStore(cfg config.Config) (kvStore, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		s, err := redis.Open(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreMemory:
		return memory.NewStore(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newUserRepository(cfg config.Config, store kvStore) domain.UserRepository {
	switch cfg.UsersSource {
	case config.UsersFile:
		return users.NewFile(cfg.AllowedUsersFile)
	case config.UsersRedis:
		if rs, ok := store.(*redis.Store); ok {
			return redis.NewUserRepository(rs)
		}
	}
	return users.NewStatic(cfg.AllowedUsernames)
}
