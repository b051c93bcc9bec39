package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/pkg/testutil"
	"github.com/google/uuid"
)

func newTestUser() *models.User {
	now := time.Now().UTC()
	id := uuid.NewString()
	return &models.User{
		ID:           id,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        id + "@example.com",
		Username:     "ada-" + id[:8],
		PasswordHash: "$2a$12$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
		Role:         models.RoleNormal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserCreateAndGet(t *testing.T) {
	db, cleanup := testutil.SetupDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	user := newTestUser()
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != user.Email || got.Username != user.Username {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.IsActive {
		t.Fatal("expected new user to be active")
	}
	if got.RecoveryToken != nil {
		t.Fatal("expected no recovery token on a fresh record")
	}

	byEmail, err := repo.GetByEmail(user.Email)
	if err != nil || byEmail.ID != user.ID {
		t.Fatalf("GetByEmail failed: %v", err)
	}
}

func TestUserGetMissing(t *testing.T) {
	db, cleanup := testutil.SetupDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	if _, err := repo.GetByID("no-such-id"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestConsumeRecoveryTokenSingleUse(t *testing.T) {
	db, cleanup := testutil.SetupDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	user := newTestUser()
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.SetRecoveryToken(user.ID, "token-one"); err != nil {
		t.Fatalf("SetRecoveryToken failed: %v", err)
	}

	// Wrong token does not consume.
	consumed, err := repo.ConsumeRecoveryToken(user.ID, "token-other")
	if err != nil {
		t.Fatalf("ConsumeRecoveryToken failed: %v", err)
	}
	if consumed {
		t.Fatal("mismatched token must not consume")
	}

	// Matching token consumes exactly once.
	consumed, err = repo.ConsumeRecoveryToken(user.ID, "token-one")
	if err != nil {
		t.Fatalf("ConsumeRecoveryToken failed: %v", err)
	}
	if !consumed {
		t.Fatal("matching token should consume")
	}

	consumed, err = repo.ConsumeRecoveryToken(user.ID, "token-one")
	if err != nil {
		t.Fatalf("ConsumeRecoveryToken failed: %v", err)
	}
	if consumed {
		t.Fatal("replayed token must not consume twice")
	}

	got, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RecoveryToken != nil {
		t.Fatal("expected recovery token cleared after consumption")
	}
}

func TestSetRecoveryTokenSupersedes(t *testing.T) {
	db, cleanup := testutil.SetupDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	user := newTestUser()
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.SetRecoveryToken(user.ID, "old-token"); err != nil {
		t.Fatalf("SetRecoveryToken failed: %v", err)
	}
	if _, err := repo.SetRecoveryToken(user.ID, "new-token"); err != nil {
		t.Fatalf("SetRecoveryToken failed: %v", err)
	}

	// The superseded token no longer redeems.
	consumed, err := repo.ConsumeRecoveryToken(user.ID, "old-token")
	if err != nil {
		t.Fatalf("ConsumeRecoveryToken failed: %v", err)
	}
	if consumed {
		t.Fatal("superseded token must not consume")
	}

	consumed, err = repo.ConsumeRecoveryToken(user.ID, "new-token")
	if err != nil || !consumed {
		t.Fatalf("expected latest token to consume, consumed=%v err=%v", consumed, err)
	}
}

func TestUserListPagination(t *testing.T) {
	db, cleanup := testutil.SetupDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	for i := 0; i < 12; i++ {
		if err := repo.Create(newTestUser()); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	users, count, err := repo.List(10, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected count 12, got %d", count)
	}
	if len(users) != 10 {
		t.Fatalf("expected 10 results on page 1, got %d", len(users))
	}

	users, _, err = repo.List(10, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 results on page 2, got %d", len(users))
	}
}

func TestUpdatePartialFields(t *testing.T) {
	db, cleanup := testutil.SetupDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	user := newTestUser()
	if err := repo.Create(user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	affected, err := repo.Update(user.ID, map[string]interface{}{"first_name": "Grace"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	got, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FirstName != "Grace" {
		t.Fatalf("expected first name updated, got %q", got.FirstName)
	}
	if got.LastName != "Lovelace" {
		t.Fatalf("untouched field changed: %q", got.LastName)
	}
}
