package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/snapshot")

// maxUpdateAttempts bounds optimistic retries when another writer touches the key.
const maxUpdateAttempts = 10

// Redis stores snapshots as plain string values. Update uses WATCH/MULTI, so
// fn may run more than once under contention.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

// NewRedisFromURL parses a redis:// URL and builds the client.
func NewRedisFromURL(url string, logger *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(redis.NewClient(opts), logger), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Redis.Get")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.key", key))

	b, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := tracer.Start(ctx, "Redis.Set")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.key", key))

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	ctx, span := tracer.Start(ctx, "Redis.Update")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.key", key))

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("redis get %s: %w", key, err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		r.logger.Debug("redis: snapshot update lost race, retrying",
			zap.String("key", key),
			zap.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("redis update %s: gave up after %d attempts", key, maxUpdateAttempts)
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
