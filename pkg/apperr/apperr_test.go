package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindBadRequest, "BAD_REQUEST"},
		{KindUnauthorized, "UNAUTHORIZED"},
		{KindForbidden, "FORBIDDEN"},
		{KindNotFound, "NOT_FOUND"},
		{KindConflict, "CONFLICT"},
		{KindInternal, "INTERNAL_SERVER_ERROR"},
	}
	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "failed to load user", cause)

	if err.Error() != "failed to load user" {
		t.Fatalf("client-facing message leaked the cause: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("Movie not found"))
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", KindOf(err))
	}
}

func TestKindOfUnknownError(t *testing.T) {
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("unknown errors should be treated as internal")
	}
}

func TestIsKind(t *testing.T) {
	err := Unauthorized("invalid credentials")
	if !IsKind(err, KindUnauthorized) {
		t.Fatal("IsKind missed a matching kind")
	}
	if IsKind(err, KindForbidden) {
		t.Fatal("IsKind matched the wrong kind")
	}
	if IsKind(errors.New("plain"), KindInternal) {
		t.Fatal("IsKind should not match non-apperr errors")
	}
}
