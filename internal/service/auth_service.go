package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenRevoker records logged-out session ids.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService signup, login and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout revokes the session jti until exp. Without a revoker it is a no-op.
	Logout(ctx context.Context, jti string, exp time.Time) error
	GetCurrentUser(ctx context.Context, p *dto.Principal) (*dto.UserResponse, error)
}

type authService struct {
	repo    *repository.Repository
	users   UserService
	jwtMgr  *jwt.Manager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewAuthService creates an AuthService. revoker may be nil when Redis is unavailable.
func NewAuthService(
	repo *repository.Repository,
	users UserService,
	jwtMgr *jwt.Manager,
	revoker TokenRevoker,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:    repo,
		users:   users,
		jwtMgr:  jwtMgr,
		revoker: revoker,
		logger:  logger,
	}
}

// Register creates a resident account. Elevated roles are granted through the CLI.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	return s.users.Create(ctx, req, model.RoleResident)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var fc fieldChecker
	fc.required("email", req.Email)
	fc.required("password", req.Password)
	if err := fc.err(); err != nil {
		return nil, err
	}

	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("look up user failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.jwtMgr.GenerateSessionToken(user.UserID, user.Email, user.Name, user.Role)
	if err != nil {
		s.logger.Error("sign session token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.UserID))

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: formatTimestamp(exp),
		User:      *toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, exp time.Time) error {
	if s.revoker == nil || jti == "" {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, jti, time.Until(exp)); err != nil {
		s.logger.Warn("revoke session failed", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, p *dto.Principal) (*dto.UserResponse, error) {
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.User.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load current user failed", zap.String("user_id", p.ID), zap.Error(err))
		return nil, err
	}

	return toUserResponse(user), nil
}
