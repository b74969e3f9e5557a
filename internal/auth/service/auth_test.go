package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	autherrors "mediq/internal/auth/errors"
	"mediq/internal/auth/validator"
	userserrors "mediq/internal/users/errors"
	"mediq/pkg/config"
	apperrors "mediq/pkg/errors"
	"mediq/pkg/logger"
	"mediq/pkg/model"
	"mediq/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFunc      func(ctx context.Context, user *model.User) error
	findByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	appendRoleFunc  func(ctx context.Context, userID string, role model.Role) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "64a000000000000000000001"
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	return nil, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockUserRepository) AppendRole(ctx context.Context, userID string, role model.Role) error {
	if m.appendRoleFunc != nil {
		return m.appendRoleFunc(ctx, userID, role)
	}
	return nil
}

type mockTokenRepository struct {
	insertFunc         func(ctx context.Context, token *model.Token) error
	findByValueFunc    func(ctx context.Context, value string) (*model.Token, error)
	deleteByUserIDFunc func(ctx context.Context, userID string) error
	deleteByValueFunc  func(ctx context.Context, value string) error
}

func (m *mockTokenRepository) Insert(ctx context.Context, token *model.Token) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, token)
	}
	return nil
}

func (m *mockTokenRepository) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	if m.findByValueFunc != nil {
		return m.findByValueFunc(ctx, value)
	}
	return nil, autherrors.ErrTokenNotFound
}

func (m *mockTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *mockTokenRepository) DeleteByValue(ctx context.Context, value string) error {
	if m.deleteByValueFunc != nil {
		return m.deleteByValueFunc(ctx, value)
	}
	return autherrors.ErrTokenNotFound
}

func errNotFoundForEmail(email string) error {
	return fmt.Errorf("%w: %s", userserrors.ErrNotFound, email)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatText,
		Service: "test",
	})
	return &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
		BcryptCost:  bcrypt.MinCost,
	}
}

func testSigner() *token.Signer {
	return token.NewSigner("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func newTestService(users *mockUserRepository, tokens *mockTokenRepository) AuthService {
	cfg := testConfig()
	return NewAuthService(users, tokens, testSigner(), validator.NewAuthValidator(cfg.Log), cfg)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "64a000000000000000000001", Email: email}, nil
		},
	}
	svc := newTestService(users, &mockTokenRepository{})

	_, _, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "taken@example.com",
		Password: "Test@1234",
	})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("Expected CONFLICT, got %s", appErr.Code)
	}
	if appErr.Message != "Account already exists for this email" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  model.RegisterRequest
	}{
		{name: "missing email", req: model.RegisterRequest{Password: "Test@1234"}},
		{name: "malformed email", req: model.RegisterRequest{Email: "not-an-email", Password: "Test@1234"}},
		{name: "short password", req: model.RegisterRequest{Email: "a@b.com", Password: "short"}},
	}

	svc := newTestService(&mockUserRepository{}, &mockTokenRepository{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), &tt.req)
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeValidation {
				t.Errorf("Expected VALIDATION_ERROR, got %s", appErr.Code)
			}
		})
	}
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errNotFoundForEmail(email)
		},
	}

	var priorDeleted, inserted bool
	var insertedAfterDelete bool
	tokens := &mockTokenRepository{
		deleteByUserIDFunc: func(ctx context.Context, userID string) error {
			priorDeleted = true
			return nil
		},
		insertFunc: func(ctx context.Context, tok *model.Token) error {
			inserted = true
			insertedAfterDelete = priorDeleted
			if tok.UserID != "64a000000000000000000001" {
				t.Errorf("Unexpected token user id: %s", tok.UserID)
			}
			if tok.Token == "" {
				t.Error("Expected refresh token value to be set")
			}
			return nil
		},
	}

	svc := newTestService(users, tokens)

	user, pair, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "new@example.com",
		Password: "Test@1234",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected user ID to be set")
	}
	if len(user.Roles) != 1 || user.Roles[0] != model.RoleUser {
		t.Errorf("Expected default role user, got %v", user.Roles)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Expected non-empty token pair")
	}
	if !priorDeleted || !inserted {
		t.Error("Expected prior tokens deleted and new token inserted")
	}
	if !insertedAfterDelete {
		t.Error("Expected prior-token delete to happen before insert")
	}

	signer := testSigner()
	claims, err := signer.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("Access token failed verification: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("Expected claims user %s, got %s", user.ID, claims.UserID)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errNotFoundForEmail(email)
		},
	}
	svc := newTestService(users, &mockTokenRepository{})

	_, _, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "missing@example.com",
		Password: "Test@1234",
	})
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 401 {
		t.Errorf("Expected status 401, got %d", appErr.StatusCode())
	}
	if appErr.Message != "User does not exist" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Correct@1234"), bcrypt.MinCost)
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "64a000000000000000000001", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := newTestService(users, &mockTokenRepository{})

	_, _, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "user@example.com",
		Password: "Wrong@1234",
	})
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 401 {
		t.Errorf("Expected status 401, got %d", appErr.StatusCode())
	}
	if appErr.Message != "Invalid password" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Test@1234"), bcrypt.MinCost)
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           "64a000000000000000000001",
				Email:        email,
				PasswordHash: string(hash),
				Roles:        []model.Role{model.RoleUser, model.RoleDoctor},
			}, nil
		},
	}
	svc := newTestService(users, &mockTokenRepository{})

	user, pair, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@example.com",
		Password: "Test@1234",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user == nil || pair == nil {
		t.Fatal("Expected user and token pair")
	}

	claims, err := testSigner().VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh token failed verification: %v", err)
	}
	if !model.HasAnyRole(claims.Roles, model.RoleDoctor) {
		t.Errorf("Expected doctor role in claims, got %v", claims.Roles)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc := newTestService(&mockUserRepository{}, &mockTokenRepository{})

	_, err := svc.Refresh(context.Background(), "never-issued")
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 400 {
		t.Errorf("Expected status 400, got %d", appErr.StatusCode())
	}
	if appErr.Message != "Invalid refresh token" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestRefreshStoredButUnverifiable(t *testing.T) {
	tokens := &mockTokenRepository{
		findByValueFunc: func(ctx context.Context, value string) (*model.Token, error) {
			return &model.Token{UserID: "64a000000000000000000001", Token: value}, nil
		},
	}
	svc := newTestService(&mockUserRepository{}, tokens)

	_, err := svc.Refresh(context.Background(), "stored-garbage")
	appErr := apperrors.AsAppError(err)
	if appErr.Message != "Invalid refresh token" {
		t.Errorf("Unexpected message: %s", appErr.Message)
	}
}

func TestRefreshMintsAccessToken(t *testing.T) {
	signer := testSigner()
	refreshToken, err := signer.SignRefresh("64a000000000000000000001", []model.Role{model.RoleUser})
	if err != nil {
		t.Fatalf("Failed to sign refresh token: %v", err)
	}

	tokens := &mockTokenRepository{
		findByValueFunc: func(ctx context.Context, value string) (*model.Token, error) {
			return &model.Token{UserID: "64a000000000000000000001", Token: value}, nil
		},
	}
	svc := newTestService(&mockUserRepository{}, tokens)

	accessToken, err := svc.Refresh(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	claims, err := signer.VerifyAccess(accessToken)
	if err != nil {
		t.Fatalf("Minted access token failed verification: %v", err)
	}
	if claims.UserID != "64a000000000000000000001" {
		t.Errorf("Unexpected claims user: %s", claims.UserID)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	deleted := false
	tokens := &mockTokenRepository{
		deleteByValueFunc: func(ctx context.Context, value string) error {
			if deleted {
				return autherrors.ErrTokenNotFound
			}
			deleted = true
			return nil
		},
	}
	svc := newTestService(&mockUserRepository{}, tokens)

	if err := svc.Logout(context.Background(), "issued-token"); err != nil {
		t.Fatalf("Unexpected error on first logout: %v", err)
	}
	if err := svc.Logout(context.Background(), "issued-token"); err != nil {
		t.Fatalf("Expected second logout to succeed, got %v", err)
	}
}
