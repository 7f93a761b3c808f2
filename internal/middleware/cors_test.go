package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorsMiddleware(t *testing.T) {
	testCases := []struct {
		name           string
		origins        []string
		origin         string
		userAgent      string
		path           string
		expectOrigin   string
		expectedStatus int
	}{
		{
			name:           "AllowedDefaultOrigin",
			origin:         "http://localhost:3000",
			path:           "/tools",
			expectOrigin:   "http://localhost:3000",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "ConfiguredOrigin",
			origins:        []string{"https://coach.example.com"},
			origin:         "https://coach.example.com",
			path:           "/tools",
			expectOrigin:   "https://coach.example.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "DefaultsReplacedByConfig",
			origins:        []string{"https://coach.example.com"},
			origin:         "http://localhost:3000",
			path:           "/tools",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "NotAllowedOrigin",
			origin:         "https://www.notallowed.com",
			path:           "/tools",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "AllowedUserAgent",
			userAgent:      "coachctl/1.0",
			path:           "/readiness",
			expectOrigin:   "*",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "McpWithoutOrigin",
			path:           "/mcp",
			expectOrigin:   "*",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "NoOriginNonBrowser",
			userAgent:      "Go-http-client/1.1",
			path:           "/tools",
			expectOrigin:   "*",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "UnknownAgentForeignOrigin",
			origin:         "https://evil.example.com",
			userAgent:      "unknown-agent",
			path:           "/tools/get_today_workout",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "McpForeignOrigin",
			origin:         "https://claude.example.com",
			path:           "/mcp",
			expectOrigin:   "https://claude.example.com",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req, err := http.NewRequest("GET", tc.path, nil)
			require.NoError(t, err)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("User-Agent", tc.userAgent)

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			handler := Cors(tc.origins...)(nextHandler)

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Unexpected status code")
			assert.Equal(t, tc.expectOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			if tc.expectOrigin != "" {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "X-COACH-TOKEN")
			}
		})
	}
}
