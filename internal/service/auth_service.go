package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flickster/flickster/backend/internal/config"
	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/flickster/flickster/backend/pkg/password"
	"github.com/flickster/flickster/backend/pkg/token"
)

// AuthService verifies credentials, mints session tokens and runs the
// single-use password-recovery lifecycle.
type AuthService struct {
	userRepo    *repository.UserRepository
	codec       *token.Codec
	sessionTTL  time.Duration
	recoveryTTL time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, codec *token.Codec, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		codec:       codec,
		sessionTTL:  time.Duration(cfg.Auth.SessionTTLHours) * time.Hour,
		recoveryTTL: time.Duration(cfg.Auth.RecoveryTTLSeconds) * time.Second,
	}
}

// CheckCredentials verifies an email+password pair against the stored
// record. Unknown email and wrong password are indistinguishable to the
// caller so login responses cannot be used to enumerate accounts; only a
// corrupted stored credential surfaces differently (as an internal error).
func (s *AuthService) CheckCredentials(email, plain string) (*models.User, error) {
	if email == "" || plain == "" {
		return nil, apperr.BadRequest("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}

	if err := password.Verify(plain, user.PasswordHash); err != nil {
		if apperr.IsKind(err, apperr.KindUnauthorized) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and mints a session token scoped to
// {id, email, role}.
func (s *AuthService) Login(email, plain string) (*models.User, string, error) {
	user, err := s.CheckCredentials(email, plain)
	if err != nil {
		return nil, "", err
	}

	signed, err := s.codec.SignSession(user.ID, user.Email, user.Role, s.sessionTTL)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// CreateRecoveryToken mints a short-lived recovery token for the account
// behind email and persists it as the single outstanding token on the
// record, superseding any previous one.
func (s *AuthService) CreateRecoveryToken(email string) (*models.User, string, error) {
	if email == "" {
		return nil, "", apperr.BadRequest("email is required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", apperr.NotFound("user not found")
		}
		return nil, "", apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}

	signed, err := s.codec.SignRecovery(user.ID, user.Email, s.recoveryTTL)
	if err != nil {
		return nil, "", err
	}

	affected, err := s.userRepo.SetRecoveryToken(user.ID, signed)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindInternal, "failed to persist recovery token", err)
	}
	if affected == 0 {
		return nil, "", apperr.NotFound("user not found")
	}

	return user, signed, nil
}

// ChangePassword redeems a recovery token and sets a new password.
//
// The token must exactly match the one currently stored on the record, not
// merely carry a valid signature: consumption clears the stored value in the
// same conditional write, so a replayed or superseded token can never be
// redeemed again. An expired-but-matched token is consumed too before the
// expiry error is returned, closing any further redemption attempts.
func (s *AuthService) ChangePassword(claims *token.Claims, newPassword, rawToken string) (*models.User, error) {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil || rawToken == "" {
		return nil, apperr.BadRequest("invalid recovery token payload")
	}
	if newPassword == "" {
		return nil, apperr.BadRequest("password is required")
	}

	consumed, err := s.userRepo.ConsumeRecoveryToken(claims.ID, rawToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to consume recovery token", err)
	}
	if !consumed {
		return nil, apperr.Unauthorized("Invalid Token")
	}

	if claims.IsExpired {
		return nil, apperr.Unauthorized("token expired")
	}

	digest, err := password.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	affected, err := s.userRepo.UpdatePassword(claims.ID, digest)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update password", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("user not found")
	}

	user, err := s.userRepo.GetByID(claims.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to reload user", err)
	}
	return user, nil
}

// VerifyToken decodes a raw session or recovery token without treating
// expiry as a decode failure, so callers can report "token expired" with the
// identity the token names.
func (s *AuthService) VerifyToken(rawToken string) (*token.Claims, error) {
	return s.codec.Verify(rawToken)
}

// GetUserByID resolves the live record for a token subject.
func (s *AuthService) GetUserByID(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Not found User")
		}
		return nil, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("failed to load user %s", id), err)
	}
	return user, nil
}
