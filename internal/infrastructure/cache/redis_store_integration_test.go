//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return config.RedisConfig{Enabled: true, Host: host, Port: port.Int()}
}

func TestRedisStore(t *testing.T) {
	cfg := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	first, err := store.MarkProcessed(ctx, "alert:42", time.Minute)
	require.NoError(t, err)
	second, err := store.MarkProcessed(ctx, "alert:42", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	processed, err := store.IsProcessed(ctx, "alert:42")
	require.NoError(t, err)
	assert.True(t, processed)

	ttl, err := store.client.TTL(ctx, DefaultKeyPrefix+"alert:42").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	t.Run("factory prefers redis when reachable", func(t *testing.T) {
		picked, err := NewIdempotencyStore(ctx, cfg, true, nil)
		require.NoError(t, err)
		defer picked.Close()

		assert.IsType(t, &RedisStore{}, picked)
	})
}
