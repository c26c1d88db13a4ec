package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/jwt"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

// Gin context keys set by JWTAuth.
const (
	ContextUserID   = "user_id"
	ContextEmail    = "email"
	ContextName     = "name"
	ContextRole     = "role"
	ContextTokenJTI = "token_jti"
	ContextTokenExp = "token_exp"
)

// RevocationChecker reports logged-out session ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuth verifies the session token from the session cookie or, failing
// that, an "Authorization: Bearer" header, and injects the principal into
// the context. revocation may be nil; when the check itself fails the
// request is let through.
func JWTAuth(jwtMgr *jwt.Manager, revocation RevocationChecker, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthenticated, "session invalid or expired")
			c.Abort()
			return
		}

		if revocation != nil && claims.ID != "" {
			revoked, err := revocation.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Warn("revocation check failed, allowing request", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, response.CodeUnauthenticated, "session has been logged out")
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextName, claims.Name)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RoleAuth lets through only callers holding one of allowedRoles.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		if userRole == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "access restricted")
		c.Abort()
	}
}
