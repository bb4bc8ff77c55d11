package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client used for the selection channel, the command
// channel and persisted terminal state. Connectivity is validated at startup
// so a misconfigured URL fails the boot instead of the first broadcast.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
