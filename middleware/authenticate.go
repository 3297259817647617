package middleware

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"pet-gate-service/domain"
	"pet-gate-service/request"
)

const (
	sessionTokenHeader = "x-session-token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error)
}

// Authenticate resolves the caller's identity and subscription tier.
// Callers without a valid session are not rejected, they go through the
// limiter on the anonymous tier keyed by client IP.
func Authenticate(authenticator Authenticator, logger log.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			token := strings.TrimSpace(ctx.Param(sessionTokenHeader))
			if token == "" {
				return next.Handle(ctx)
			}

			resp, err := authenticator.Authenticate(ctx.Context(), token)
			if err != nil {
				return errors.WithMessage(err, "authenticate: authenticate")
			}
			if !resp.Authenticated {
				logger.Debug(ctx.Context(),
					"authenticate: invalid session token, continue as anonymous",
					log.String("errorReason", resp.ErrorReason),
				)
				return next.Handle(ctx)
			}

			ctx.Authenticate(request.AuthData{
				UserId: resp.AuthData.UserId,
				Tier:   resp.AuthData.Tier,
			})

			return next.Handle(ctx)
		})
	}
}
