package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/tracksync/internal/shared/errors"
	"github.com/orris-inc/tracksync/internal/shared/logger"
	"github.com/orris-inc/tracksync/internal/shared/utils"
)

// AuthMiddleware guards the customer request API with a single shared bearer token.
type AuthMiddleware struct {
	token  []byte
	logger logger.Interface
}

func NewAuthMiddleware(token string, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		token:  []byte(token),
		logger: logger,
	}
}

// RequireAuth rejects every request when no token is configured.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(m.token) == 0 {
			m.logger.Warnw("rejecting request: API bearer token is not configured",
				"path", c.Request.URL.Path,
			)
			abortUnauthorized(c, "authentication is not configured")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization token")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), m.token) != 1 {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	utils.ErrorResponseWithError(c, errors.NewUnauthorizedError(message))
	c.Abort()
}
