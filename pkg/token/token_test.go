package token

import (
	"testing"
	"time"

	"mediq/pkg/model"
)

func newTestSigner(accessTTL, refreshTTL time.Duration) *Signer {
	return NewSigner("access-secret", "refresh-secret", accessTTL, refreshTTL)
}

func TestSignAndVerifyAccess(t *testing.T) {
	s := newTestSigner(15*time.Minute, 24*time.Hour)

	raw, err := s.SignAccess("62d0b723973a6ab7e30b3bc8", []model.Role{model.RoleUser, model.RoleDoctor})
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}

	claims, err := s.VerifyAccess(raw)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if claims.UserID != "62d0b723973a6ab7e30b3bc8" {
		t.Errorf("expected user id round-trip, got %s", claims.UserID)
	}
	if !model.HasAnyRole(claims.Roles, model.RoleDoctor) {
		t.Errorf("expected doctor role in claims, got %v", claims.Roles)
	}
}

func TestVerifyRejectsCrossSecret(t *testing.T) {
	s := newTestSigner(15*time.Minute, 24*time.Hour)

	refresh, err := s.SignRefresh("62d0b723973a6ab7e30b3bc8", []model.Role{model.RoleUser})
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}

	// A refresh token must not pass as an access token.
	if _, err := s.VerifyAccess(refresh); err == nil {
		t.Errorf("expected refresh token to fail access verification")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := newTestSigner(-1*time.Minute, -1*time.Minute)

	raw, err := s.SignAccess("62d0b723973a6ab7e30b3bc8", []model.Role{model.RoleUser})
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}

	if _, err := s.VerifyAccess(raw); err == nil {
		t.Errorf("expected expired token to fail verification")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := newTestSigner(15*time.Minute, 24*time.Hour)
	if _, err := s.VerifyRefresh("refreshToken"); err == nil {
		t.Errorf("expected malformed token to fail verification")
	}
}
