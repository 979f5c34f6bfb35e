package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/swairua/medplus/infrastructure/service/logger"
)

// RateLimitService throttles privileged mutation attempts per caller key.
type RateLimitService interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config for the Redis-backed limiter.
type Config struct {
	Enabled  bool
	RedisURL string
	Attempts int
	Window   time.Duration
}

type rateLimitService struct {
	client   *redis.Client
	attempts int
	window   time.Duration
	log      logger.Logger
}

// New returns a Redis-backed limiter, or a noop one when disabled.
func New(cfg Config, log logger.Logger) (RateLimitService, error) {
	if !cfg.Enabled {
		return &noopRateLimitService{}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &rateLimitService{
		client:   client,
		attempts: cfg.Attempts,
		window:   cfg.Window,
		log:      log,
	}, nil
}

// Allow counts the attempt and reports whether the caller is still inside
// its window. A Redis error fails open: throttling is a guard, not a
// correctness requirement, and must not take mutations down with it.
func (s *rateLimitService) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		s.log.Warn(ctx, "rate limiter unavailable, allowing request", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return true, nil
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, s.window).Err(); err != nil {
			s.log.Warn(ctx, "failed to set rate limit window", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return count <= int64(s.attempts), nil
}

type noopRateLimitService struct{}

func (s *noopRateLimitService) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
