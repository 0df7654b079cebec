package cache

import "time"

// Config holds cache backend selection and behavior.
type Config struct {
	Backend   string        `json:"backend"`   // "memory" or "redis"
	RedisURL  string        `json:"redisURL"`  // required for the redis backend
	KeyPrefix string        `json:"keyPrefix"` // prefix for all redis keys
	ValueTTL  time.Duration `json:"valueTTL"`  // redis persistence window
}

// DefaultConfig returns the in-memory configuration the dashboard uses when
// nothing is specified.
func DefaultConfig() Config {
	return Config{
		Backend:   "memory",
		KeyPrefix: "leave:",
		ValueTTL:  10 * time.Minute,
	}
}
