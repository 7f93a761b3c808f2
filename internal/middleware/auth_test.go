package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/hyroxcoach/internal/auth"
	"github.com/2beens/hyroxcoach/internal/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sessionCapture struct {
	called  bool
	session *auth.Session
}

func (c *sessionCapture) ServeHTTP(_ http.ResponseWriter, r *http.Request) {
	c.called = true
	c.session, _ = middleware.SessionFromContext(r.Context())
}

func TestAuthCheck_AllowedPaths(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMocksessionResolver(ctrl)
	next := &sessionCapture{}
	handler := middleware.NewAuthMiddlewareHandler(resolver).AuthCheck()(next)

	for _, path := range []string{"/", "/health"} {
		next.called = false
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, next.called, path)
		assert.Nil(t, next.session)
	}
}

func TestAuthCheck_Options(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMocksessionResolver(ctrl)
	next := &sessionCapture{}
	handler := middleware.NewAuthMiddlewareHandler(resolver).AuthCheck()(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/tools", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, next.called)
	assert.Contains(t, rr.Header().Get("Allow"), "POST")
}

func TestAuthCheck_MissingToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMocksessionResolver(ctrl)
	next := &sessionCapture{}
	handler := middleware.NewAuthMiddlewareHandler(resolver).AuthCheck()(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tools", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, next.called)
}

func TestAuthCheck_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMocksessionResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "stale").Return(nil, auth.ErrSessionNotFound)
	next := &sessionCapture{}
	handler := middleware.NewAuthMiddlewareHandler(resolver).AuthCheck()(next)

	req := httptest.NewRequest(http.MethodGet, "/readiness", nil)
	req.Header.Set(middleware.TokenHeader, "stale")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, next.called)
}

func TestAuthCheck_ResolveFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMocksessionResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "tkn").Return(nil, errors.New("redis down"))
	next := &sessionCapture{}
	handler := middleware.NewAuthMiddlewareHandler(resolver).AuthCheck()(next)

	req := httptest.NewRequest(http.MethodGet, "/readiness", nil)
	req.Header.Set(middleware.TokenHeader, "tkn")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, next.called)
}

func TestAuthCheck_ValidToken(t *testing.T) {
	session := &auth.Session{
		AthleteID: uuid.New(),
		UserID:    uuid.New(),
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		name   string
		header string
		value  string
	}{
		{name: "coach token header", header: middleware.TokenHeader, value: "tkn"},
		{name: "bearer token", header: "Authorization", value: "Bearer tkn"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			resolver := NewMocksessionResolver(ctrl)
			resolver.EXPECT().Resolve(gomock.Any(), "tkn").Return(session, nil)
			next := &sessionCapture{}
			handler := middleware.NewAuthMiddlewareHandler(resolver).AuthCheck()(next)

			req := httptest.NewRequest(http.MethodPost, "/tools/get_today_workout", nil)
			req.Header.Set(tc.header, tc.value)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			require.True(t, next.called)
			require.NotNil(t, next.session)
			assert.Equal(t, session.AthleteID, next.session.AthleteID)
			assert.Equal(t, session.UserID, next.session.UserID)
		})
	}
}
