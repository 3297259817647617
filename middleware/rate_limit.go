package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"pet-gate-service/domain"
	"pet-gate-service/httperrors"
	"pet-gate-service/request"
)

const (
	limitHeader      = "X-RateLimit-Limit"
	remainingHeader  = "X-RateLimit-Remaining"
	resetHeader      = "X-RateLimit-Reset"
	retryAfterHeader = "Retry-After"
)

type Admitter interface {
	Admit(ctx context.Context, req domain.AdmissionRequest) domain.AdmissionResult
}

func RateLimit(admitter Admitter) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			admissionReq := admissionRequest(ctx)
			result := admitter.Admit(ctx.Context(), admissionReq)

			header := ctx.ResponseWriter().Header()
			header.Set(limitHeader, strconv.FormatInt(result.Limit, 10))
			header.Set(remainingHeader, strconv.FormatInt(result.Remaining, 10))
			if !result.ResetAt.IsZero() {
				header.Set(resetHeader, strconv.FormatInt(result.ResetAt.Unix(), 10))
			}

			if result.Allowed {
				return next.Handle(ctx)
			}

			httpErr := httperrors.New(
				http.StatusTooManyRequests,
				"rate limit has been reached",
				errors.Errorf("rate limit: %s for %s '%s'", result.Reason, admissionReq.Identity.Kind, admissionReq.Identity.Value),
			).WithDetail("reason", result.Reason)
			if !result.ResetAt.IsZero() {
				retryAfter := int64(math.Ceil(time.Until(result.ResetAt).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				httpErr = httpErr.WithHeader(retryAfterHeader, strconv.FormatInt(retryAfter, 10))
			}
			return httpErr
		})
	}
}

func admissionRequest(ctx *request.Context) domain.AdmissionRequest {
	req := domain.AdmissionRequest{
		Method: ctx.Request().Method,
		Path:   ctx.Endpoint(),
		Ip:     ctx.ClientIp(),
	}

	authData, err := ctx.GetAuthData()
	if err != nil {
		req.Identity = domain.Identity{Kind: domain.IdentityKindIp, Value: req.Ip}
		req.Tier = domain.TierAnonymous
		return req
	}

	req.Identity = domain.Identity{Kind: domain.IdentityKindUser, Value: authData.UserId}
	req.Tier = authData.Tier
	return req
}
