package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "mediq/pkg/errors"
	"mediq/pkg/logger"
	"mediq/pkg/model"
	"mediq/pkg/token"

	"github.com/julienschmidt/httprouter"
)

type mockVerifier struct {
	verifyFunc func(raw string) (*token.Claims, error)
}

func (m *mockVerifier) VerifyAccess(raw string) (*token.Claims, error) {
	return m.verifyFunc(raw)
}

type mockUserResolver struct {
	findFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserResolver) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findFunc(ctx, id)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: logger.FormatText})
}

func okHandler(called *bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	guard := NewAuthGuard(&mockVerifier{}, &mockUserResolver{}, testLogger())

	called := false
	handle := guard.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	rec := httptest.NewRecorder()
	handle(rec, req, nil)

	if called {
		t.Error("Expected handler not to be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Access denied: No token provided.") {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	guard := NewAuthGuard(&mockVerifier{}, &mockUserResolver{}, testLogger())

	called := false
	handle := guard.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "some-raw-token")
	rec := httptest.NewRecorder()
	handle(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(raw string) (*token.Claims, error) {
			return nil, token.ErrInvalidToken
		},
	}
	guard := NewAuthGuard(verifier, &mockUserResolver{}, testLogger())

	called := false
	handle := guard.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handle(rec, req, nil)

	if called {
		t.Error("Expected handler not to be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Access denied: Invalid or expired token.") {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(raw string) (*token.Claims, error) {
			return &token.Claims{UserID: "abc123"}, nil
		},
	}
	users := &mockUserResolver{
		findFunc: func(ctx context.Context, id string) (*model.User, error) {
			return nil, apperrors.NotFound("User does not exist")
		},
	}
	guard := NewAuthGuard(verifier, users, testLogger())

	called := false
	handle := guard.Authenticate(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handle(rec, req, nil)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestAuthenticateAttachesUser(t *testing.T) {
	user := &model.User{ID: "abc123", Email: "doc@example.com", Roles: []model.Role{model.RoleDoctor}}

	verifier := &mockVerifier{
		verifyFunc: func(raw string) (*token.Claims, error) {
			return &token.Claims{UserID: user.ID}, nil
		},
	}
	users := &mockUserResolver{
		findFunc: func(ctx context.Context, id string) (*model.User, error) {
			if id != user.ID {
				t.Errorf("Expected lookup for %s, got %s", user.ID, id)
			}
			return user, nil
		},
	}
	guard := NewAuthGuard(verifier, users, testLogger())

	var got *model.User
	handle := guard.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	handle(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if got == nil || got.ID != user.ID {
		t.Error("Expected authenticated user in request context")
	}
}

func TestRequireRole(t *testing.T) {
	guard := NewAuthGuard(&mockVerifier{}, &mockUserResolver{}, testLogger())

	tests := []struct {
		name       string
		userRoles  []model.Role
		required   []model.Role
		wantStatus int
	}{
		{
			name:       "role granted",
			userRoles:  []model.Role{model.RoleUser, model.RoleDoctor},
			required:   []model.Role{model.RoleDoctor},
			wantStatus: http.StatusOK,
		},
		{
			name:       "any of several roles",
			userRoles:  []model.Role{model.RolePatient},
			required:   []model.Role{model.RoleDoctor, model.RolePatient},
			wantStatus: http.StatusOK,
		},
		{
			name:       "role missing",
			userRoles:  []model.Role{model.RoleUser},
			required:   []model.Role{model.RoleAdmin},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handle := guard.RequireRole(tt.required...)(okHandler(&called))

			user := &model.User{ID: "abc123", Roles: tt.userRoles}
			req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
			req = req.WithContext(context.WithValue(req.Context(), UserKey, user))

			rec := httptest.NewRecorder()
			handle(rec, req, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusForbidden {
				if called {
					t.Error("Expected handler not to be called")
				}
				if !strings.Contains(rec.Body.String(), "You are not authorised") {
					t.Errorf("Unexpected body: %s", rec.Body.String())
				}
			}
		})
	}
}

func TestRequireRoleWithoutAuthentication(t *testing.T) {
	guard := NewAuthGuard(&mockVerifier{}, &mockUserResolver{}, testLogger())

	called := false
	handle := guard.RequireRole(model.RoleDoctor)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	handle(rec, req, nil)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}
