package service

import (
	"context"
	"errors"

	autherrors "mediq/internal/auth/errors"
	"mediq/internal/auth/repository"
	"mediq/internal/auth/validator"
	userserrors "mediq/internal/users/errors"
	usersrepo "mediq/internal/users/repository"
	"mediq/pkg/config"
	apperrors "mediq/pkg/errors"
	"mediq/pkg/model"
	"mediq/pkg/sanitizer"
	"mediq/pkg/token"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenPair, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	users     usersrepo.UserRepository
	tokens    repository.TokenRepository
	signer    *token.Signer
	validator *validator.AuthValidator
	cfg       *config.Config
}

func NewAuthService(
	users usersrepo.UserRepository,
	tokens repository.TokenRepository,
	signer *token.Signer,
	validator *validator.AuthValidator,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		signer:    signer,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenPair, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateRegister(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed",
			"email", req.Email,
			"error", err,
		)
		return nil, nil, apperrors.Validation("Registration validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, nil, apperrors.Conflict("Account already exists for this email")
	} else if !errors.Is(err, userserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check for existing account",
			"email", req.Email,
			"error", err,
		)
		return nil, nil, apperrors.Internal("Failed to check for existing account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        []model.Role{model.RoleUser},
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique email index closes the check-then-create race.
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, nil, apperrors.Conflict("Account already exists for this email")
		}
		s.cfg.Log.Error("Failed to create account",
			"email", req.Email,
			"error", err,
		)
		return nil, nil, apperrors.Internal("Failed to create account", err)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.cfg.Log.Info("Account created",
		"user_id", user.ID,
		"email", user.Email,
	)
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.TokenPair, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, nil, apperrors.Validation("Login validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized("User does not exist")
		}
		s.cfg.Log.Error("Failed to look up account",
			"email", req.Email,
			"error", err,
		)
		return nil, nil, apperrors.Internal("Failed to look up account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Warn("Login rejected",
			"user_id", user.ID,
			"email", user.Email,
		)
		return nil, nil, apperrors.Unauthorized("Invalid password")
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.cfg.Log.Info("Login succeeded",
		"user_id", user.ID,
		"email", user.Email,
	)
	return user, pair, nil
}

// issue mints a token pair and persists the refresh token. Any prior
// refresh tokens for the user are removed first, so one session is live
// per account.
func (s *authService) issue(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	accessToken, err := s.signer.SignAccess(user.ID, user.Roles)
	if err != nil {
		return nil, apperrors.Internal("Failed to sign access token", err)
	}

	refreshToken, err := s.signer.SignRefresh(user.ID, user.Roles)
	if err != nil {
		return nil, apperrors.Internal("Failed to sign refresh token", err)
	}

	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		s.cfg.Log.Error("Failed to remove prior refresh tokens",
			"user_id", user.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to remove prior refresh tokens", err)
	}

	record := &model.Token{
		UserID: user.ID,
		Token:  refreshToken,
	}
	if err := s.tokens.Insert(ctx, record); err != nil {
		return nil, apperrors.Internal("Failed to persist refresh token", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh mints a new access token. The store lookup runs before
// signature verification, so a revoked-but-unexpired token is rejected.
// A stored-but-unverifiable record is left for the TTL index to reap.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if _, err := s.tokens.FindByValue(ctx, refreshToken); err != nil {
		if errors.Is(err, autherrors.ErrTokenNotFound) {
			return "", apperrors.InvalidToken("Invalid refresh token")
		}
		s.cfg.Log.Error("Failed to look up refresh token", "error", err)
		return "", apperrors.Internal("Failed to look up refresh token", err)
	}

	claims, err := s.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperrors.InvalidToken("Invalid refresh token")
	}

	accessToken, err := s.signer.SignAccess(claims.UserID, claims.Roles)
	if err != nil {
		return "", apperrors.Internal("Failed to sign access token", err)
	}

	s.cfg.Log.Info("Access token refreshed", "user_id", claims.UserID)
	return accessToken, nil
}

// Logout removes the refresh token record if it exists. Unknown tokens
// report success as well.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokens.DeleteByValue(ctx, refreshToken)
	if err != nil && !errors.Is(err, autherrors.ErrTokenNotFound) {
		s.cfg.Log.Error("Failed to delete refresh token", "error", err)
		return apperrors.Internal("Failed to delete refresh token", err)
	}
	return nil
}
