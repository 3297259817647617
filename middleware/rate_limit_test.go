package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/txix-open/isp-kit/log"
	"pet-gate-service/domain"
	"pet-gate-service/middleware"
	"pet-gate-service/request"
)

type stubAdmitter struct {
	result      domain.AdmissionResult
	lastRequest domain.AdmissionRequest
}

func (s *stubAdmitter) Admit(ctx context.Context, req domain.AdmissionRequest) domain.AdmissionResult {
	s.lastRequest = req
	return s.result
}

func testLogger(t *testing.T) log.Logger {
	logger, err := log.New(log.WithLevel(log.FatalLevel))
	require.NoError(t, err)
	return logger
}

func okHandler() middleware.Handler {
	return middleware.HandlerFunc(func(ctx *request.Context) error {
		ctx.ResponseWriter().WriteHeader(http.StatusOK)
		return nil
	})
}

func TestRateLimitAllowed(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	resetAt := time.Now().Add(time.Hour)
	admitter := &stubAdmitter{result: domain.AdmissionResult{
		Allowed:   true,
		Limit:     100,
		Remaining: 58,
		ResetAt:   resetAt,
	}}
	handler := middleware.Chain(okHandler(), middleware.ErrorHandler(testLogger(t)), middleware.RateLimit(admitter))

	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	req.RemoteAddr = "203.0.113.7:51034"
	rec := httptest.NewRecorder()
	err := handler.Handle(request.NewContext(req, rec, "/pets"))
	require.NoError(err)

	require.EqualValues(http.StatusOK, rec.Code)
	require.EqualValues("100", rec.Header().Get("X-RateLimit-Limit"))
	require.EqualValues("58", rec.Header().Get("X-RateLimit-Remaining"))
	require.EqualValues(resetAt.Unix(), mustParseInt(t, rec.Header().Get("X-RateLimit-Reset")))

	// unauthenticated caller is limited as anonymous, keyed by client ip
	require.EqualValues(domain.TierAnonymous, admitter.lastRequest.Tier)
	require.EqualValues(domain.Identity{Kind: domain.IdentityKindIp, Value: "203.0.113.7"}, admitter.lastRequest.Identity)
}

func TestRateLimitAuthenticatedIdentity(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	admitter := &stubAdmitter{result: domain.AdmissionResult{Allowed: true, Limit: 1, Remaining: 1}}
	handler := middleware.Chain(okHandler(), middleware.ErrorHandler(testLogger(t)), middleware.RateLimit(admitter))

	req := httptest.NewRequest(http.MethodPost, "/pets/lost-reports", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	ctx := request.NewContext(req, rec, "/pets/lost-reports")
	ctx.Authenticate(request.AuthData{UserId: "user-42", Tier: domain.TierPremium})
	err := handler.Handle(ctx)
	require.NoError(err)

	require.EqualValues(domain.TierPremium, admitter.lastRequest.Tier)
	require.EqualValues(domain.Identity{Kind: domain.IdentityKindUser, Value: "user-42"}, admitter.lastRequest.Identity)
	require.EqualValues("203.0.113.9", admitter.lastRequest.Ip)
	require.EqualValues("POST", admitter.lastRequest.Method)
	require.EqualValues("/pets/lost-reports", admitter.lastRequest.Path)
}

func TestRateLimitDenied(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	admitter := &stubAdmitter{result: domain.AdmissionResult{
		Allowed:   false,
		Limit:     5,
		Remaining: 0,
		ResetAt:   time.Now().Add(30 * time.Minute),
		Reason:    domain.ReasonRateExceeded,
	}}
	handler := middleware.Chain(okHandler(), middleware.ErrorHandler(testLogger(t)), middleware.RateLimit(admitter))

	req := httptest.NewRequest(http.MethodPost, "/pets/lost-reports", nil)
	req.RemoteAddr = "203.0.113.7:51034"
	rec := httptest.NewRecorder()
	err := handler.Handle(request.NewContext(req, rec, "/pets/lost-reports"))
	require.NoError(err)

	require.EqualValues(http.StatusTooManyRequests, rec.Code)
	require.EqualValues("5", rec.Header().Get("X-RateLimit-Limit"))
	require.EqualValues("0", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(rec.Header().Get("X-RateLimit-Reset"))
	retryAfter := mustParseInt(t, rec.Header().Get("Retry-After"))
	require.Greater(retryAfter, int64(0))
	require.LessOrEqual(retryAfter, int64(30*60))

	body := struct {
		ErrorMessage string            `json:"errorMessage"`
		Details      map[string]string `json:"details"`
	}{}
	err = json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(err)
	require.EqualValues(domain.ReasonRateExceeded, body.Details["reason"])
}

func mustParseInt(t *testing.T, value string) int64 {
	parsed, err := json.Number(value).Int64()
	require.NoError(t, err)
	return parsed
}
