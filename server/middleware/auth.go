package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/asr-server/auth"
	"github.com/kbukum/asr-server/auth/authctx"
	"github.com/kbukum/asr-server/auth/jwt"
	apperrors "github.com/kbukum/asr-server/errors"
)

// ClaimsKey is the gin context key holding validated claims.
const ClaimsKey = "auth.claims"

// AuthConfig configures the bearer authentication middleware.
type AuthConfig struct {
	Validator auth.TokenValidator
	// SkipPaths are exact paths that bypass authentication.
	SkipPaths []string
}

// Auth validates "Authorization: Bearer <token>" with cfg.Validator. Claims
// are stored in the request context via authctx and under ClaimsKey.
// A nil Validator disables the check.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if cfg.Validator == nil || skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperrors.Unauthorized("Authorization header required"))
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, apperrors.Unauthorized("Invalid authorization header format"))
			return
		}

		claims, err := cfg.Validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, apperrors.TokenExpired())
				return
			}
			abort(c, apperrors.InvalidToken())
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), claims))
		c.Next()
	}
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
