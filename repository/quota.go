package repository

import (
	"context"
	"fmt"
	"time"

	"pet-gate-service/domain"
)

type Quota struct {
	counter Counter
}

func NewQuota(counter Counter) Quota {
	return Quota{
		counter: counter,
	}
}

func (r Quota) Increment(ctx context.Context, identity domain.Identity, category string, window time.Duration) (int64, error) {
	return r.counter.Increment(ctx, r.key(identity, category), window)
}

func (r Quota) TimeToLive(ctx context.Context, identity domain.Identity, category string) (time.Duration, error) {
	return r.counter.TimeToLive(ctx, r.key(identity, category))
}

// The key excludes geography on purpose: a caller's usage must stay on one
// counter across minor IP changes, geography only scales the limit.
func (r Quota) key(identity domain.Identity, category string) string {
	return fmt.Sprintf("quota:%s:%s:%s", identity.Kind, identity.Value, category)
}
