// Package redis guarda claves Idempotency-Key en Redis para no registrar dos veces el mismo movimiento.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

var _ inventory.IdempotencyGuard = (*IdempotencyStore)(nil)

const (
	keyPrefix  = "ledger:idempotency:"
	defaultTTL = 24 * time.Hour
)

// IdempotencyStore implementa inventory.IdempotencyGuard con SETNX.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl <= 0 usa 24h.
func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Reserve devuelve true si la clave no existía y quedó reservada.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release libera la clave (la operación falló y puede reintentarse).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
