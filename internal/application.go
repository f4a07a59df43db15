package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/config"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/repository"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/hotseat-tictactoe/transport/rest"
	"github.com/rocketscienceinc/hotseat-tictactoe/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis host is empty")

// RunApp - runs the hot-seat server until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessionRepo, closeRepo, err := newSessionRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	hub := websocket.NewHub(logger, conf.AllowedOrigins)
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, hub)
	handlers := rest.NewHandlers(logger, sessionManager, hub)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)

	if err = rest.Start(ctx, conf.HTTPPort, rest.NewRouter(handlers, conf.AllowedOrigins)); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

func newSessionRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	if conf.Storage != config.StorageRedis {
		return repository.NewMemorySessionRepository(conf.SessionTTL), func() {}, nil
	}

	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewSessionRepository(redisStorage, conf.SessionTTL), closeFn, nil
}
