package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the cost used when hashing the server password.
const bcryptCost = 10

// ErrPasswordMismatch is returned when a PASS does not match the configured hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword compares a bcrypt hashed password with its plaintext version.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Gate decides whether a connection may register.
// The zero Gate admits everyone.
type Gate struct {
	hash string
}

// NewGate returns a gate guarded by hash; an empty hash disables it.
func NewGate(hash string) Gate {
	return Gate{hash: hash}
}

// Required reports whether a PASS must precede NICK.
func (g Gate) Required() bool {
	return g.hash != ""
}

// Check validates a PASS argument.
func (g Gate) Check(password string) error {
	if !g.Required() {
		return nil
	}
	if err := ComparePassword(g.hash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
