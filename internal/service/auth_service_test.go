package service

import (
	"testing"
	"time"

	"github.com/flickster/flickster/backend/internal/config"
	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/flickster/flickster/backend/pkg/password"
	"github.com/flickster/flickster/backend/pkg/testutil"
	"github.com/flickster/flickster/backend/pkg/token"
	"github.com/google/uuid"
)

func newTestAuthService(t *testing.T) (*AuthService, *repository.UserRepository, *token.Codec, func()) {
	t.Helper()
	db, cleanup := testutil.SetupDB(t)
	userRepo := repository.NewUserRepository(db)
	codec := token.NewCodec("test-secret-key-for-testing")
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret-key-for-testing",
			SessionTTLHours:    24,
			RecoveryTTLSeconds: 900,
		},
	}
	return NewAuthService(userRepo, codec, cfg), userRepo, codec, cleanup
}

func seedUser(t *testing.T, repo *repository.UserRepository, plain string) *models.User {
	t.Helper()
	digest, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	user := &models.User{
		ID:           id,
		FirstName:    "Test",
		LastName:     "User",
		Email:        id + "@example.com",
		Username:     "user-" + id[:8],
		PasswordHash: digest,
		Role:         models.RoleNormal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return user
}

func TestCheckCredentials(t *testing.T) {
	svc, repo, _, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "hunter2hunter2")

	got, err := svc.CheckCredentials(user.Email, "hunter2hunter2")
	if err != nil {
		t.Fatalf("CheckCredentials rejected valid credentials: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("wrong user returned: %s", got.ID)
	}
}

func TestCheckCredentialsDoesNotLeakAccountExistence(t *testing.T) {
	svc, repo, _, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "hunter2hunter2")

	_, errUnknown := svc.CheckCredentials("nobody@example.com", "whatever123")
	_, errWrongPw := svc.CheckCredentials(user.Email, "wrong password")

	for _, err := range []error{errUnknown, errWrongPw} {
		if !apperr.IsKind(err, apperr.KindUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}
	// Identical messages, so a caller cannot probe which emails exist.
	if errUnknown.Error() != errWrongPw.Error() {
		t.Fatalf("distinguishable errors: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestLoginMintsVerifiableToken(t *testing.T) {
	svc, repo, codec, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "hunter2hunter2")

	got, signed, err := svc.Login(user.Email, "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("wrong user: %s", got.ID)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("minted token failed verification: %v", err)
	}
	if claims.ID != user.ID || claims.Email != user.Email || claims.Role != user.Role {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.IsExpired {
		t.Fatal("fresh session token reported expired")
	}
}

func TestCreateRecoveryTokenPersists(t *testing.T) {
	svc, repo, codec, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "hunter2hunter2")

	_, signed, err := svc.CreateRecoveryToken(user.Email)
	if err != nil {
		t.Fatalf("CreateRecoveryToken failed: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("recovery token failed verification: %v", err)
	}
	if claims.ID != user.ID || claims.Role != "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.RecoveryToken == nil || *stored.RecoveryToken != signed {
		t.Fatal("recovery token not persisted on the record")
	}
}

func TestCreateRecoveryTokenUnknownEmail(t *testing.T) {
	svc, _, _, cleanup := newTestAuthService(t)
	defer cleanup()

	if _, _, err := svc.CreateRecoveryToken("nobody@example.com"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChangePasswordHappyPath(t *testing.T) {
	svc, repo, codec, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "old-password-1")

	_, signed, err := svc.CreateRecoveryToken(user.Email)
	if err != nil {
		t.Fatalf("CreateRecoveryToken failed: %v", err)
	}
	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if _, err := svc.ChangePassword(claims, "new-password-1", signed); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	// New password works, old one does not.
	if _, err := svc.CheckCredentials(user.Email, "new-password-1"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, err := svc.CheckCredentials(user.Email, "old-password-1"); err == nil {
		t.Fatal("old password still accepted")
	}
}

func TestChangePasswordIsSingleUse(t *testing.T) {
	svc, repo, codec, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "old-password-1")

	_, signed, err := svc.CreateRecoveryToken(user.Email)
	if err != nil {
		t.Fatalf("CreateRecoveryToken failed: %v", err)
	}
	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if _, err := svc.ChangePassword(claims, "new-password-1", signed); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}

	_, err = svc.ChangePassword(claims, "another-password", signed)
	if !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
	if err.Error() != "Invalid Token" {
		t.Fatalf("unexpected replay message: %q", err.Error())
	}
}

func TestChangePasswordSupersededToken(t *testing.T) {
	svc, repo, codec, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "old-password-1")

	_, first, err := svc.CreateRecoveryToken(user.Email)
	if err != nil {
		t.Fatalf("CreateRecoveryToken failed: %v", err)
	}
	// A later request replaces the stored token.
	if _, err := repo.SetRecoveryToken(user.ID, "a-newer-token"); err != nil {
		t.Fatalf("SetRecoveryToken failed: %v", err)
	}

	claims, err := codec.Verify(first)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if _, err := svc.ChangePassword(claims, "new-password-1", first); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for superseded token, got %v", err)
	}
}

func TestChangePasswordExpiredTokenIsBurned(t *testing.T) {
	svc, repo, codec, cleanup := newTestAuthService(t)
	defer cleanup()

	user := seedUser(t, repo, "old-password-1")

	// Mint a token that is already expired but still store it on the record,
	// as if the user waited too long to click the link.
	signed, err := codec.SignRecovery(user.ID, user.Email, -time.Minute)
	if err != nil {
		t.Fatalf("SignRecovery failed: %v", err)
	}
	if _, err := repo.SetRecoveryToken(user.ID, signed); err != nil {
		t.Fatalf("SetRecoveryToken failed: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !claims.IsExpired {
		t.Fatal("expected IsExpired on the minted token")
	}

	_, err = svc.ChangePassword(claims, "new-password-1", signed)
	if !apperr.IsKind(err, apperr.KindUnauthorized) || err.Error() != "token expired" {
		t.Fatalf("expected 'token expired', got %v", err)
	}

	// The expired token was consumed: the password is unchanged and the
	// token cannot be presented again.
	if _, err := svc.CheckCredentials(user.Email, "old-password-1"); err != nil {
		t.Fatalf("password changed despite expired token: %v", err)
	}
	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.RecoveryToken != nil {
		t.Fatal("expired token should have been cleared on redemption attempt")
	}
}

func TestChangePasswordRejectsBadInput(t *testing.T) {
	svc, _, codec, cleanup := newTestAuthService(t)
	defer cleanup()

	signed, err := codec.SignRecovery("some-id", "x@example.com", time.Minute)
	if err != nil {
		t.Fatalf("SignRecovery failed: %v", err)
	}
	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if _, err := svc.ChangePassword(nil, "new-password", signed); !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for nil claims, got %v", err)
	}
	if _, err := svc.ChangePassword(claims, "", signed); !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for empty password, got %v", err)
	}
	if _, err := svc.ChangePassword(claims, "new-password", ""); !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for empty raw token, got %v", err)
	}
}

func TestGetUserByIDMissing(t *testing.T) {
	svc, _, _, cleanup := newTestAuthService(t)
	defer cleanup()

	_, err := svc.GetUserByID(uuid.NewString())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
