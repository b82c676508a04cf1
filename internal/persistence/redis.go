package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/config"
)

// ErrRedisDisabled is reported when REDIS_ADDR is empty.
var ErrRedisDisabled = errors.New("redis client not configured")

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. An unreachable
// server is logged but not fatal; callers degrade per request.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; redis features disabled")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Enabled reports whether a client was configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return ErrRedisDisabled
	}
	return r.Client.Ping(ctx).Err()
}

// Publish sends payload to a pub/sub channel.
func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) error {
	if !r.Enabled() {
		return ErrRedisDisabled
	}
	return r.Client.Publish(ctx, channel, payload).Err()
}
