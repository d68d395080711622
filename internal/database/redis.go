package database

import (
	"context"
	"fmt"
	"time"

	"github.com/abotl/abotl-web/internal/config"
	"github.com/abotl/abotl-web/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// The credential relay is read on every page that talks to the backend, so
// a slow Redis must fail fast rather than stall the page.
const (
	redisDialTimeout = 3 * time.Second
	redisIOTimeout   = time.Second
)

// NewRedisClient creates the client behind the credential relay and checks
// that it answers. Timeouts given in REDIS_URL take precedence.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if opt.ClientName == "" {
		opt.ClientName = logger.ServiceName
	}
	if opt.DialTimeout == 0 {
		opt.DialTimeout = redisDialTimeout
	}
	if opt.ReadTimeout == 0 {
		opt.ReadTimeout = redisIOTimeout
	}
	if opt.WriteTimeout == 0 {
		opt.WriteTimeout = redisIOTimeout
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Dur("read_timeout", opt.ReadTimeout).
		Msg("Redis connected, credentials are shared across instances")

	return rdb, nil
}
