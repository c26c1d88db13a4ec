package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/service"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/response"
)

// AuthHandler signup, login and session endpoints
type AuthHandler struct {
	authSvc service.AuthService
	cookie  *config.CookieConfig
}

// NewAuthHandler creates an AuthHandler. cookie may be nil, in which case
// the token is only returned in the body.
func NewAuthHandler(authSvc service.AuthService, cookie *config.CookieConfig) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cookie: cookie}
}

// Register resident signup
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// Login issues a session cookie
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	if exp, perr := time.Parse(time.RFC3339, result.ExpiresAt); perr == nil {
		h.setSessionCookie(c, result.Token, int(time.Until(exp).Seconds()))
	}
	response.OK(c, result)
}

// Logout revokes the session and clears the cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := sessionToken(c)

	// the cookie is cleared even when revocation fails
	h.setSessionCookie(c, "", -1)
	_ = h.authSvc.Logout(c.Request.Context(), jti, exp)

	response.OK(c, nil)
}

// GetCurrentUser session profile
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), p)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	if h.cookie == nil || h.cookie.Name == "" {
		return
	}
	c.SetSameSite(sameSiteMode(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func sameSiteMode(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func handleAuthError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "invalid email or password")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11002, "an account with this email already exists")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11003, "user not found")
	default:
		response.InternalError(c)
	}
}
