package cache

import (
	"fmt"

	redisClient "github.com/redis/go-redis/v9"
)

// New creates a Store for the configured backend.
func New(config Config) (Store, error) {
	switch config.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if config.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires a redis URL")
		}
		opt, err := redisClient.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		return NewRedisStore(redisClient.NewClient(opt), config), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", config.Backend)
	}
}
