package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/tracksync/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedEngine(mw gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.GET("/guarded", mw, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
	}{
		{"valid token", "secret", "Bearer secret", http.StatusOK},
		{"scheme is case-insensitive", "secret", "bearer secret", http.StatusOK},
		{"wrong token", "secret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"wrong scheme", "secret", "Basic secret", http.StatusUnauthorized},
		{"no token configured", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newGuardedEngine(NewAuthMiddleware(tt.token, logger.NewNopLogger()).RequireAuth())

			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"type":"unauthorized"`)
			}
		})
	}
}
