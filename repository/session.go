package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
	"pet-gate-service/domain"
)

type Session struct {
	cli *httpcli.Client
	url string
}

func NewSession(cli *httpcli.Client, url string) Session {
	return Session{
		cli: cli,
		url: url,
	}
}

type verifySessionRequest struct {
	Token string `json:"token"`
}

type verifySessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	ErrorReason   string `json:"errorReason"`
	UserId        string `json:"userId"`
	Tier          string `json:"tier"`
}

func (r Session) Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error) {
	resp := verifySessionResponse{}
	_, err := r.cli.Post(r.url).
		JsonRequestBody(verifySessionRequest{Token: token}).
		JsonResponseBody(&resp).
		StatusCodeToError().
		Do(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "call session service")
	}

	if !resp.Authenticated {
		return &domain.AuthenticateResponse{
			Authenticated: false,
			ErrorReason:   resp.ErrorReason,
		}, nil
	}

	return &domain.AuthenticateResponse{
		Authenticated: true,
		AuthData: &domain.AuthData{
			UserId: resp.UserId,
			Tier:   resp.Tier,
		},
	}, nil
}
