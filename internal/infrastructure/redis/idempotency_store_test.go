package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerredis "github.com/jhoicas/inventario-ledger/internal/infrastructure/redis"
)

func getRedisClient(t *testing.T) *goredis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIdempotencyStore_ReservaUnaSolaVez(t *testing.T) {
	client := getRedisClient(t)
	store := ledgerredis.NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()
	key := uuid.New().String()
	t.Cleanup(func() { _ = store.Release(ctx, key) })

	ok, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "la segunda reserva de la misma clave debe fallar")
}

func TestIdempotencyStore_ReleasePermiteReintentar(t *testing.T) {
	client := getRedisClient(t)
	store := ledgerredis.NewIdempotencyStore(client, time.Minute)
	ctx := context.Background()
	key := uuid.New().String()

	ok, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, key))

	ok, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Release(ctx, key))
}
