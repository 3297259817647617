package repository

import (
	"context"
	"fmt"
	"time"

	"pet-gate-service/domain"
)

const burstWindow = time.Minute

type Burst struct {
	counter Counter
}

func NewBurst(counter Counter) Burst {
	return Burst{
		counter: counter,
	}
}

func (r Burst) Increment(ctx context.Context, identity domain.Identity) (int64, error) {
	return r.counter.Increment(ctx, r.key(identity), burstWindow)
}

func (r Burst) key(identity domain.Identity) string {
	return fmt.Sprintf("burst:%s:%s", identity.Kind, identity.Value)
}
