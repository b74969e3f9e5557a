package token

import (
	"errors"
	"time"

	"mediq/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload carried by both access and refresh tokens. Roles are
// a snapshot at issue time; the access gate re-reads them from the store.
type Claims struct {
	UserID string       `json:"user_id"`
	Roles  []model.Role `json:"roles"`
	jwt.RegisteredClaims
}

// Signer mints and verifies the HS256 token pair. Access and refresh tokens
// are signed with separate secrets so one cannot stand in for the other.
type Signer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewSigner(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Signer {
	return &Signer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *Signer) SignAccess(userID string, roles []model.Role) (string, error) {
	return s.sign(userID, roles, s.accessSecret, s.accessTTL)
}

func (s *Signer) SignRefresh(userID string, roles []model.Role) (string, error) {
	return s.sign(userID, roles, s.refreshSecret, s.refreshTTL)
}

func (s *Signer) sign(userID string, roles []model.Role, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Signer) VerifyAccess(raw string) (*Claims, error) {
	return verify(raw, s.accessSecret)
}

func (s *Signer) VerifyRefresh(raw string) (*Claims, error) {
	return verify(raw, s.refreshSecret)
}

func verify(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
