// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for new digests.
var Cost = bcrypt.DefaultCost

// MaxBytes is the longest password bcrypt accepts, in bytes.
const MaxBytes = 72

// ErrEmpty is returned when hashing an empty password.
var ErrEmpty = errors.New("password must not be empty")

// ErrTooLong is returned when hashing a password longer than MaxBytes.
var ErrTooLong = errors.New("password must be at most 72 bytes")

// Hasher hashes and checks passwords.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// Bcrypt implements Hasher with golang.org/x/crypto/bcrypt.
type Bcrypt struct{}

// Hash returns a salted digest of plaintext. Each call uses a fresh salt.
func (Bcrypt) Hash(plaintext string) (string, error) {
	return Hash(plaintext)
}

// Verify reports whether plaintext produced digest.
func (Bcrypt) Verify(plaintext, digest string) bool {
	return Verify(plaintext, digest)
}

// Hash returns a salted bcrypt digest of plaintext.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmpty
	}
	if len(plaintext) > MaxBytes {
		return "", ErrTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest never
// matches.
func Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
