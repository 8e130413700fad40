package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/ducoin/boucherie-backend/pkg/auth"
	"github.com/ducoin/boucherie-backend/pkg/auth/session"
	"github.com/ducoin/boucherie-backend/pkg/config"
	"github.com/ducoin/boucherie-backend/pkg/db/models"
	"github.com/ducoin/boucherie-backend/pkg/enums"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
	"github.com/ducoin/boucherie-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "boucherie-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(&stubUserRepo{}, &stubSessionManager{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	if err == nil {
		t.Fatal("expected error for unknown email")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	user := testUser(t, "correct-horse")
	svc := newTestAuthService(&stubUserRepo{user: user}, &stubSessionManager{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "battery-staple"})
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	t.Parallel()

	user := testUser(t, "correct-horse")
	user.IsActive = false
	svc := newTestAuthService(&stubUserRepo{user: user}, &stubSessionManager{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct-horse"})
	if err == nil {
		t.Fatal("expected error for inactive account")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	t.Parallel()

	user := testUser(t, "correct-horse")
	repo := &stubUserRepo{user: user}
	sessions := &stubSessionManager{refreshToken: "refresh-1"}
	svc := newTestAuthService(repo, sessions)

	got, err := svc.Login(context.Background(), LoginRequest{Email: "  " + user.Email + " ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AccessToken == "" || got.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected token pair: %+v", got)
	}
	if got.User == nil || got.User.Email != user.Email {
		t.Fatalf("expected user echo, got %+v", got.User)
	}
	if !repo.lastLoginSet {
		t.Fatal("expected last login recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), got.AccessToken)
	if err != nil {
		t.Fatalf("minted token failed to parse: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected subject %s got %s", user.ID, claims.UserID)
	}
	if claims.ID != sessions.lastAccessID {
		t.Fatalf("expected jti to match session access id")
	}
}

func TestRefreshRejectsInvalidRefreshToken(t *testing.T) {
	t.Parallel()

	user := testUser(t, "correct-horse")
	sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestAuthService(&stubUserRepo{user: user}, sessions)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "access-1",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "stale"})
	if err == nil {
		t.Fatal("expected error for stale refresh token")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	user := testUser(t, "correct-horse")
	sessions := &stubSessionManager{rotatedAccessID: "access-2", rotatedRefresh: "refresh-2"}
	svc := newTestAuthService(&stubUserRepo{user: user}, sessions)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC().Add(-time.Hour), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "access-1",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	got, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: accessToken, RefreshToken: "refresh-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RefreshToken != "refresh-2" {
		t.Fatalf("expected rotated refresh token, got %q", got.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), got.AccessToken)
	if err != nil {
		t.Fatalf("new token failed to parse: %v", err)
	}
	if claims.ID != "access-2" {
		t.Fatalf("expected new jti access-2, got %q", claims.ID)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSessionManager{}
	svc := newTestAuthService(&stubUserRepo{}, sessions)

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessions.revoked != "access-1" {
		t.Fatalf("expected access-1 revoked, got %q", sessions.revoked)
	}

	if err := svc.Logout(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func newTestAuthService(repo userRepository, sessions sessionManager) Service {
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		panic(err)
	}
	return svc
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		PasswordHash: hash,
		Name:         "Test Customer",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
}

type stubUserRepo struct {
	user         *models.User
	lastLoginSet bool
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginSet = true
	return nil
}

type stubSessionManager struct {
	refreshToken    string
	lastAccessID    string
	rotateErr       error
	rotatedAccessID string
	rotatedRefresh  string
	revoked         string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.lastAccessID = accessID
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return s.rotatedAccessID, s.rotatedRefresh, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}
