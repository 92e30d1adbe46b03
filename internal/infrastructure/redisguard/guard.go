// Package redisguard lock distribuido por (tenant, serie) alrededor de la
// asignación de consecutivos. Solo reduce colisiones entre réplicas; el
// índice único de la base sigue decidiendo.
package redisguard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

var _ ports.AllocationGuard = (*Guard)(nil)

const backoff = 25 * time.Millisecond

// Guard implementa ports.AllocationGuard con bsm/redislock.
type Guard struct {
	locker *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    *logger.Logger
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// New construye el guard. ttl acota cuánto vive un lock huérfano; wait cuánto
// se espera a que otra réplica lo suelte antes de rendirse.
func New(rdb redis.Scripter, ttl, wait time.Duration, log *logger.Logger) *Guard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 2 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{locker: redislock.New(rdb), ttl: ttl, wait: wait, log: log.Component("redisguard")}
}

// Key clave del lock para un tenant y serie.
func Key(tenantID, series string) string {
	return fmt.Sprintf("pos-ledger:number:%s:%s", tenantID, series)
}

// Acquire obtiene el lock o devuelve error (redislock.ErrNotObtained si otra réplica lo retiene).
func (g *Guard) Acquire(ctx context.Context, tenantID, series string) (func(), error) {
	key := Key(tenantID, series)
	retries := int(g.wait / backoff)
	lock, err := g.locker.Obtain(ctx, key, g.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(backoff), retries),
	})
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() {
		// el contexto de la petición puede estar cancelado al liberar
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			g.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock")
		}
	}, nil
}
