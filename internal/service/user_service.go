package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/repository"
)

// ── account module errors ──

var (
	ErrEmailExists = errors.New("an account with this email already exists")
	ErrInvalidRole = errors.New("unknown role")
)

const (
	minPasswordLength = 8
	// bcrypt only reads the first 72 bytes
	maxPasswordBytes = 72
)

// UserService account management. Used by signup and by the operator CLI.
type UserService interface {
	Create(ctx context.Context, req *dto.RegisterRequest, role string) (*dto.UserResponse, error)
	List(ctx context.Context, role string) ([]dto.UserResponse, error)
}

type userService struct {
	repo       *repository.Repository
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger, bcryptCost: bcrypt.DefaultCost}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.RegisterRequest, role string) (*dto.UserResponse, error) {
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var fc fieldChecker
	fc.check("name", name, ruleName)
	fc.check("email", email, ruleEmail)
	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordBytes {
		fc.add("password")
	}
	if err := fc.err(); err != nil {
		return nil, err
	}

	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("look up email failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same address
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("account created", zap.String("user_id", user.UserID), zap.String("role", role))
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, role string) ([]dto.UserResponse, error) {
	if role != "" && !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	users, err := s.repo.User.ListByRole(ctx, role)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:    u.UserID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = formatTimestamp(u.CreatedAt)
	}
	return resp
}
