package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/sitelist/internal/logger"
	"github.com/MrSnakeDoc/sitelist/internal/retry"
)

// ConnectOptions defines the Redis client and its startup retry behavior.
type ConnectOptions struct {
	Addr     string // Redis address (ex: "localhost:6379")
	User     string // Optional username
	Password string // Optional password
	DB       int    // Redis DB number
	PoolSize int    // Redis connection pool size (0 = driver default)
	Retry    retry.Policy
}

// New creates a Redis client and pings it until it answers or the retry
// budget is spent.
func New(opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.User,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	err := retry.Probe("redis", opts.Retry, log, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
