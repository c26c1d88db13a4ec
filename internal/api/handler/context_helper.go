package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/api/middleware"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

// MustGetPrincipal builds the caller's Principal from the values JWTAuth put
// in the context. When they are missing it writes a 401 and returns false;
// callers return immediately in that case.
func MustGetPrincipal(c *gin.Context) (*dto.Principal, bool) {
	userID := c.GetString(middleware.ContextUserID)
	role := c.GetString(middleware.ContextRole)
	if userID == "" || role == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "authentication required")
		return nil, false
	}
	return &dto.Principal{
		ID:    userID,
		Email: c.GetString(middleware.ContextEmail),
		Name:  c.GetString(middleware.ContextName),
		Role:  role,
	}, true
}

// sessionToken returns the jti and expiry of the current session, if any.
func sessionToken(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextTokenJTI)
	var exp time.Time
	if v, ok := c.Get(middleware.ContextTokenExp); ok {
		exp, _ = v.(time.Time)
	}
	return jti, exp
}
