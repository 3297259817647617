package proxy

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/requestid"
	"pet-gate-service/httperrors"
	"pet-gate-service/request"
)

const (
	requestIdHeader = "x-request-id"
	userIdHeader    = "x-user-id"
	tierHeader      = "x-subscription-tier"
)

type Http struct {
	target  *url.URL
	timeout time.Duration
}

func NewHttp(target *url.URL, timeout time.Duration) Http {
	return Http{
		target:  target,
		timeout: timeout,
	}
}

func (p Http) Handle(ctx *request.Context) error {
	req := ctx.Request()
	req.URL.Path = ctx.Endpoint()
	setHeaders(ctx, req.Header)

	reverseProxy := httputil.NewSingleHostReverseProxy(p.target)
	var resultError error
	reverseProxy.ErrorHandler = func(writer http.ResponseWriter, request *http.Request, err error) {
		resultError = httperrors.New(
			http.StatusServiceUnavailable,
			"upstream is not available",
			errors.WithMessagef(err, "http proxy to %s", p.target.Host),
		)
	}

	timeoutCtx, cancel := context.WithTimeout(req.Context(), p.timeout)
	defer cancel()
	reverseProxy.ServeHTTP(ctx.ResponseWriter(), req.WithContext(timeoutCtx))

	return resultError
}

func setHeaders(ctx *request.Context, header http.Header) {
	header.Set(requestIdHeader, requestid.FromContext(ctx.Context()))

	authData, err := ctx.GetAuthData()
	if err != nil {
		header.Del(userIdHeader)
		header.Del(tierHeader)
		return
	}
	header.Set(userIdHeader, authData.UserId)
	header.Set(tierHeader, authData.Tier)
}
