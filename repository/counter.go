package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Counter is a thin client over redis TTL counters. Atomicity of the
// increment is redis's contract, no in-process locking happens here.
type Counter struct {
	cli     redis.UniversalClient
	timeout time.Duration
}

func NewCounter(cli redis.UniversalClient, timeout time.Duration) Counter {
	return Counter{
		cli:     cli,
		timeout: timeout,
	}
}

// Increment increments key and establishes the window expiry exactly once,
// on the increment that creates the key. ExpireNX keeps later increments
// from re-arming the window.
func (r Counter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.cli.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.WithMessage(err, "incr")
	}

	if value == 1 {
		err := r.cli.ExpireNX(ctx, key, window).Err()
		if err != nil {
			return 0, errors.WithMessage(err, "expire nx")
		}
	}

	return value, nil
}

// TimeToLive returns a negative duration when the key has no expiry.
func (r Counter) TimeToLive(ctx context.Context, key string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ttl, err := r.cli.TTL(ctx, key).Result()
	if err != nil {
		return 0, errors.WithMessage(err, "ttl")
	}

	return ttl, nil
}
