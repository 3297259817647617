package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
	"pet-gate-service/cache"
	"pet-gate-service/domain"
)

type SessionCache struct {
	cache    *cache.Cache
	duration time.Duration
}

func NewSessionCache(duration time.Duration) SessionCache {
	return SessionCache{
		duration: duration,
		cache:    cache.New(),
	}
}

func (r SessionCache) Get(ctx context.Context, token string) (*domain.AuthData, error) {
	data, ok := r.cache.Get(token)
	if !ok {
		return nil, domain.ErrSessionCacheMiss
	}

	result := domain.AuthData{}
	err := json.Unmarshal(data, &result)
	if err != nil {
		return nil, errors.WithMessage(err, "json unmarshal auth data")
	}

	return &result, nil
}

func (r SessionCache) Set(ctx context.Context, token string, data domain.AuthData) error {
	value, err := json.Marshal(data)
	if err != nil {
		return errors.WithMessage(err, "json marshal auth data")
	}

	r.cache.Set(token, value, r.duration)

	return nil
}
