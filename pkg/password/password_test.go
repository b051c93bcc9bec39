package password

import (
	"testing"

	"github.com/flickster/flickster/backend/pkg/apperr"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if digest == "correct horse battery staple" {
		t.Fatal("Hash returned the plaintext")
	}

	if err := Verify("correct horse battery staple", digest); err != nil {
		t.Fatalf("Verify rejected the correct password: %v", err)
	}
}

func TestHashCost(t *testing.T) {
	digest, err := Hash("some password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	if cost != Cost {
		t.Fatalf("expected cost %d, got %d", Cost, cost)
	}
}

func TestHashProducesDistinctDigests(t *testing.T) {
	a, err := Hash("same password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := Hash("same password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if a == b {
		t.Fatal("expected per-hash salts to produce distinct digests")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	if _, err := Hash(""); !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for empty password, got %v", err)
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	digest, err := Hash("right password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	err = Verify("wrong password", digest)
	if !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
}

func TestVerifyEmptyPlain(t *testing.T) {
	digest, err := Hash("something")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	err = Verify("", digest)
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for empty password, got %v", err)
	}
}

func TestVerifyEmptyDigest(t *testing.T) {
	// A record with no stored credential is a server-side defect, not a
	// client error.
	err := Verify("anything", "")
	if !apperr.IsKind(err, apperr.KindInternal) {
		t.Fatalf("expected internal error for empty digest, got %v", err)
	}
}
