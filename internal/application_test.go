package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/config"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
)

func TestNewSessionRepository(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Memory storage", func(t *testing.T) {
		// Given: a config selecting the in-memory store
		conf := &config.Config{Storage: config.StorageMemory, SessionTTL: time.Hour}

		// When: the repository is built
		repo, closeRepo, err := newSessionRepository(context.Background(), logger, conf)
		require.NoError(t, err)
		defer closeRepo()

		// Then: sessions can be stored and read back
		require.NoError(t, repo.Save(context.Background(), &entity.Session{ID: "s1"}))
		session, err := repo.GetByID(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", session.ID)
	})

	t.Run("Redis storage without host", func(t *testing.T) {
		conf := &config.Config{Storage: config.StorageRedis, SessionTTL: time.Hour}

		_, _, err := newSessionRepository(context.Background(), logger, conf)

		assert.ErrorIs(t, err, ErrAddrNotFound)
	})

	t.Run("Unreachable Redis", func(t *testing.T) {
		// Given: a Redis address nothing listens on
		conf := &config.Config{
			Storage:    config.StorageRedis,
			SessionTTL: time.Hour,
			Redis:      config.Redis{Host: "127.0.0.1", Port: "1"},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// When: the repository is built
		_, _, err := newSessionRepository(ctx, logger, conf)

		// Then: the connection error is reported
		assert.ErrorContains(t, err, "could not connect to redis storage")
	})
}
