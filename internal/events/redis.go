package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/udinder/internal/config"
)

// Channel is the pub/sub channel every domain event is published on.
const Channel = "udinder:events"

// RedisPublisher publishes domain events over Redis pub/sub.
type RedisPublisher struct {
	Client *redis.Client
	logger *slog.Logger
}

// NewRedisClient initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisClient(cfg *config.Config) *redis.Client {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return redis.NewClient(opts)
}

// NewRedisPublisher wraps an existing client.
func NewRedisPublisher(client *redis.Client, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{Client: client, logger: logger}
}

// New returns a Redis publisher when Redis is configured and a Nop otherwise.
// The returned close func releases the connection pool.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Publisher, func() error, error) {
	if cfg.Redis.Addr == "" {
		return Nop{}, func() error { return nil }, nil
	}
	p := NewRedisPublisher(NewRedisClient(cfg), logger)
	if err := p.Ping(ctx); err != nil {
		_ = p.Client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return p, p.Client.Close, nil
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}

// Publish sends an event. Failures are returned for the caller to log;
// callers treat them as non-fatal.
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.Client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published", "type", e.Type, "user_id", e.UserID, "peer_id", e.PeerID)
	return nil
}
