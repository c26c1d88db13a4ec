package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/config"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/dto"
	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	"github.com/UTDallasEPICS/the-samaritan-inn/pkg/jwt"
)

// ── test helpers ──

type fakeRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeRevoker) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if f.revoked == nil {
		f.revoked = make(map[string]time.Duration)
	}
	f.revoked[jti] = ttl
	return nil
}

func setupTestAuthService(revoker TokenRevoker) (AuthService, *testRepos, *jwt.Manager) {
	repos := newTestRepos()
	logger := zap.NewNop()
	users := NewUserService(repos.repo, logger).(*userService)
	users.bcryptCost = bcrypt.MinCost

	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:  "test-secret-key-for-unit-testing-2025",
		SessionTTL: time.Hour,
	})
	return NewAuthService(repos.repo, users, jwtMgr, revoker, logger), repos, jwtMgr
}

func registerAlice(t *testing.T, svc AuthService) *dto.UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Alice Resident",
		Email:    "Alice@Example.org",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return user
}

// ── Register ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, repos, _ := setupTestAuthService(nil)

	user := registerAlice(t, svc)
	if user.ID == "" {
		t.Error("expected generated id")
	}
	if user.Role != model.RoleResident {
		t.Errorf("expected role=resident, got %s", user.Role)
	}
	if user.Email != "alice@example.org" {
		t.Errorf("expected normalized email, got %s", user.Email)
	}

	stored, err := repos.users.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.PasswordHash == "correct-horse" {
		t.Fatal("password must not be stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")) != nil {
		t.Error("stored hash does not match password")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   dto.RegisterRequest
		field string
	}{
		{"missing name", dto.RegisterRequest{Email: "a@example.org", Password: "12345678"}, "name"},
		{"bad email", dto.RegisterRequest{Name: "A", Email: "not-an-email", Password: "12345678"}, "email"},
		{"missing email", dto.RegisterRequest{Name: "A", Password: "12345678"}, "email"},
		{"short password", dto.RegisterRequest{Name: "A", Email: "a@example.org", Password: "1234567"}, "password"},
		{"long name", dto.RegisterRequest{Name: strings.Repeat("n", 101), Email: "a@example.org", Password: "12345678"}, "name"},
		{"display name address", dto.RegisterRequest{Name: "A", Email: "Sarah <s@x.org>", Password: "12345678"}, "email"},
		{"long email", dto.RegisterRequest{Name: "A", Email: strings.Repeat("a", 250) + "@x.org", Password: "12345678"}, "email"},
		{"password past bcrypt limit", dto.RegisterRequest{Name: "A", Email: "a@example.org", Password: strings.Repeat("p", 73)}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := setupTestAuthService(nil)
			_, err := svc.Register(context.Background(), &tt.req)
			assertValidationFields(t, err, tt.field)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Other", Email: "alice@example.org", Password: "another-pass",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthService_Register_DuplicateInsertRace(t *testing.T) {
	svc, repos, _ := setupTestAuthService(nil)
	// the lookup misses but the unique index rejects the insert
	repos.users.createErr = gorm.ErrDuplicatedKey

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Alice", Email: "alice@example.org", Password: "correct-horse",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

// ── Login ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, jwtMgr := setupTestAuthService(nil)
	user := registerAlice(t, svc)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@example.org", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.User.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, resp.User.ID)
	}

	claims, err := jwtMgr.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleResident || claims.Name != "Alice Resident" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if resp.ExpiresAt == "" {
		t.Error("expected expiresAt")
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	registerAlice(t, svc)

	for _, req := range []dto.LoginRequest{
		{Email: "alice@example.org", Password: "wrong-password"},
		{Email: "nobody@example.org", Password: "correct-horse"},
	} {
		_, err := svc.Login(context.Background(), &req)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", req.Email, err)
		}
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{})
	assertValidationFields(t, err, "email", "password")
}

// ── Logout ──

func TestAuthService_Logout_RevokesForRemainingLifetime(t *testing.T) {
	revoker := &fakeRevoker{}
	svc, _, _ := setupTestAuthService(revoker)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	ttl, ok := revoker.revoked["jti-1"]
	if !ok {
		t.Fatal("expected jti to be revoked")
	}
	if ttl <= 29*time.Minute || ttl > 30*time.Minute {
		t.Errorf("unexpected ttl %s", ttl)
	}
}

func TestAuthService_Logout_WithoutRevoker(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("logout without revoker should succeed, got %v", err)
	}
}

func TestAuthService_Logout_RevokerError(t *testing.T) {
	revoker := &fakeRevoker{err: errors.New("redis down")}
	svc, _, _ := setupTestAuthService(revoker)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err == nil {
		t.Error("expected revoker error to surface")
	}
}

// ── GetCurrentUser ──

func TestAuthService_GetCurrentUser(t *testing.T) {
	svc, _, _ := setupTestAuthService(nil)
	user := registerAlice(t, svc)
	ctx := context.Background()

	me, err := svc.GetCurrentUser(ctx, &dto.Principal{ID: user.ID, Role: model.RoleResident})
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Email != "alice@example.org" {
		t.Errorf("unexpected profile: %+v", me)
	}

	if _, err := svc.GetCurrentUser(ctx, &dto.Principal{ID: "gone"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GetCurrentUser(ctx, nil); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

// ── UserService ──

func TestUserService_CreateAndList(t *testing.T) {
	repos := newTestRepos()
	users := NewUserService(repos.repo, zap.NewNop()).(*userService)
	users.bcryptCost = bcrypt.MinCost
	ctx := context.Background()

	if _, err := users.Create(ctx, &dto.RegisterRequest{Name: "Zed Admin", Email: "zed@example.org", Password: "12345678"}, model.RoleAdmin); err != nil {
		t.Fatalf("Create admin failed: %v", err)
	}
	if _, err := users.Create(ctx, &dto.RegisterRequest{Name: "Amy Resident", Email: "amy@example.org", Password: "12345678"}, model.RoleResident); err != nil {
		t.Fatalf("Create resident failed: %v", err)
	}

	all, err := users.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Amy Resident" {
		t.Errorf("expected both users ordered by name, got %+v", all)
	}

	admins, err := users.List(ctx, model.RoleAdmin)
	if err != nil {
		t.Fatalf("List admins failed: %v", err)
	}
	if len(admins) != 1 || admins[0].Email != "zed@example.org" {
		t.Errorf("expected one admin, got %+v", admins)
	}
}

func TestUserService_InvalidRole(t *testing.T) {
	repos := newTestRepos()
	users := NewUserService(repos.repo, zap.NewNop())

	_, err := users.Create(context.Background(), &dto.RegisterRequest{Name: "X", Email: "x@example.org", Password: "12345678"}, "superuser")
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := users.List(context.Background(), "superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}
