package service

import (
	"context"
	"testing"

	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/flickster/flickster/backend/pkg/password"
	"github.com/flickster/flickster/backend/pkg/testutil"
)

func newTestUserService(t *testing.T) (*UserService, *repository.UserRepository, func()) {
	t.Helper()
	db, cleanup := testutil.SetupDB(t)
	userRepo := repository.NewUserRepository(db)
	return NewUserService(userRepo, NewMediaService(newStubStore())), userRepo, cleanup
}

func signUpInput(email, username string) CreateUserInput {
	return CreateUserInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Username:  username,
		Password:  "secret-password-1",
	}
}

func TestSignUp(t *testing.T) {
	svc, repo, cleanup := newTestUserService(t)
	defer cleanup()

	user, secondary, err := svc.SignUp(context.Background(), signUpInput("jane@example.com", "jane"), "", nil)
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if secondary != nil {
		t.Fatalf("unexpected secondary error: %v", secondary)
	}
	if user.Role != models.RoleNormal {
		t.Fatalf("expected NORMAL role, got %q", user.Role)
	}
	if !user.IsActive {
		t.Fatal("expected new account active")
	}

	stored, err := repo.GetByEmail("jane@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if stored.PasswordHash == "secret-password-1" {
		t.Fatal("password stored in plaintext")
	}
	if err := password.Verify("secret-password-1", stored.PasswordHash); err != nil {
		t.Fatalf("stored digest does not match password: %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _, cleanup := newTestUserService(t)
	defer cleanup()

	if _, _, err := svc.SignUp(context.Background(), signUpInput("dup@example.com", "first"), "", nil); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}

	_, _, err := svc.SignUp(context.Background(), signUpInput("dup@example.com", "second"), "", nil)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestSignUpDuplicateUsername(t *testing.T) {
	svc, _, cleanup := newTestUserService(t)
	defer cleanup()

	if _, _, err := svc.SignUp(context.Background(), signUpInput("a@example.com", "taken"), "", nil); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}

	_, _, err := svc.SignUp(context.Background(), signUpInput("b@example.com", "taken"), "", nil)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for duplicate username, got %v", err)
	}
}

func TestSignUpMissingFields(t *testing.T) {
	svc, _, cleanup := newTestUserService(t)
	defer cleanup()

	in := signUpInput("x@example.com", "x")
	in.Password = ""
	if _, _, err := svc.SignUp(context.Background(), in, "", nil); !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestSignUpBadImageIsSecondary(t *testing.T) {
	svc, _, cleanup := newTestUserService(t)
	defer cleanup()

	// A broken profile image must not block account creation.
	user, secondary, err := svc.SignUp(context.Background(),
		signUpInput("img@example.com", "imguser"), "avatar.png", []byte("not an image"))
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if secondary == nil {
		t.Fatal("expected secondary error for rejected image")
	}
	if user.ImageURL != "" {
		t.Fatalf("expected no image URL, got %q", user.ImageURL)
	}
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc, repo, cleanup := newTestUserService(t)
	defer cleanup()

	user, _, err := svc.SignUp(context.Background(), signUpInput("up@example.com", "upuser"), "", nil)
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	newPassword := "rotated-password-9"
	if _, err := svc.Update(user.ID, UpdateUserInput{Password: &newPassword}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if err := password.Verify(newPassword, stored.PasswordHash); err != nil {
		t.Fatalf("rotated password not verifiable: %v", err)
	}
}

func TestUpdateUsernameConflict(t *testing.T) {
	svc, _, cleanup := newTestUserService(t)
	defer cleanup()

	if _, _, err := svc.SignUp(context.Background(), signUpInput("one@example.com", "one"), "", nil); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	two, _, err := svc.SignUp(context.Background(), signUpInput("two@example.com", "two"), "", nil)
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	taken := "one"
	if _, err := svc.Update(two.ID, UpdateUserInput{Username: &taken}); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	svc, _, cleanup := newTestUserService(t)
	defer cleanup()

	user, _, err := svc.SignUp(context.Background(), signUpInput("gone@example.com", "gone"), "", nil)
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	if err := svc.Delete(user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(user.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
