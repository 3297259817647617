package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"pet-gate-service/domain"
	"pet-gate-service/middleware"
	"pet-gate-service/request"
)

type stubAuthenticator struct {
	sessions map[string]domain.AuthData
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.AuthenticateResponse, error) {
	authData, ok := s.sessions[token]
	if !ok {
		return &domain.AuthenticateResponse{Authenticated: false, ErrorReason: "session expired"}, nil
	}
	return &domain.AuthenticateResponse{Authenticated: true, AuthData: &authData}, nil
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	authenticator := stubAuthenticator{sessions: map[string]domain.AuthData{
		"valid-token": {UserId: "user-42", Tier: domain.TierFamily},
	}}

	testCases := []struct {
		name          string
		token         string
		expectedAuth  bool
		expectedTier  string
		expectedUsrId string
	}{
		{name: "no token is anonymous", token: "", expectedAuth: false},
		{name: "invalid token is anonymous", token: "stale-token", expectedAuth: false},
		{name: "valid token resolves tier", token: "valid-token", expectedAuth: true, expectedTier: domain.TierFamily, expectedUsrId: "user-42"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require := require.New(t)

			var resolved *request.AuthData
			next := middleware.HandlerFunc(func(ctx *request.Context) error {
				authData, err := ctx.GetAuthData()
				if err == nil {
					resolved = &authData
				}
				return nil
			})
			handler := middleware.Chain(next, middleware.Authenticate(authenticator, testLogger(t)))

			req := httptest.NewRequest(http.MethodGet, "/pets", nil)
			if testCase.token != "" {
				req.Header.Set("x-session-token", testCase.token)
			}
			err := handler.Handle(request.NewContext(req, httptest.NewRecorder(), "/pets"))
			require.NoError(err)

			if !testCase.expectedAuth {
				require.Nil(resolved)
				return
			}
			require.NotNil(resolved)
			require.EqualValues(testCase.expectedUsrId, resolved.UserId)
			require.EqualValues(testCase.expectedTier, resolved.Tier)
		})
	}
}
