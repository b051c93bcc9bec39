// Package password wraps bcrypt hashing and verification for stored
// user credentials.
package password

import (
	"errors"

	"github.com/flickster/flickster/backend/pkg/apperr"
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor applied to every new hash.
const Cost = 12

// Hash derives a salted bcrypt digest from a plaintext password.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", apperr.BadRequest("password must not be empty")
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}
	return string(digest), nil
}

// Verify compares a plaintext password against a stored digest.
//
// An empty plaintext is the caller's fault (bad request); an empty or
// undecodable digest means the stored credential is corrupted and is
// reported as an internal error, never blamed on the caller.
func Verify(plain, digest string) error {
	if plain == "" {
		return apperr.BadRequest("password not provided for compare")
	}
	if digest == "" {
		return apperr.Internal("the user account is not set up correctly, contact an admin")
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperr.Unauthorized("wrong credentials")
	}
	// Any other failure means the digest itself is not a valid bcrypt hash.
	return apperr.Wrap(apperr.KindInternal, "the user account is not set up correctly, contact an admin", err)
}
