package service

import (
	"context"

	"github.com/pkg/errors"
	"pet-gate-service/domain"
)

type SessionCache interface {
	Get(ctx context.Context, token string) (*domain.AuthData, error)
	Set(ctx context.Context, token string, data domain.AuthData) error
}

type SessionRepo interface {
	Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error)
}

type Authentication struct {
	cache SessionCache
	repo  SessionRepo
}

func NewAuthentication(cache SessionCache, repo SessionRepo) Authentication {
	return Authentication{
		cache: cache,
		repo:  repo,
	}
}

func (s Authentication) Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error) {
	authData, err := s.cache.Get(ctx, token)
	if errors.Is(err, domain.ErrSessionCacheMiss) {
		resp, err := s.repo.Authenticate(ctx, token)
		if err != nil {
			return nil, errors.WithMessage(err, "session repo authenticate")
		}
		if !resp.Authenticated {
			return resp, nil
		}
		err = s.cache.Set(ctx, token, *resp.AuthData)
		if err != nil {
			return nil, errors.WithMessage(err, "session cache set")
		}
		return resp, nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "session cache get")
	}
	return &domain.AuthenticateResponse{
		Authenticated: true,
		AuthData:      authData,
	}, nil
}
