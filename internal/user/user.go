package user

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so the login response never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is an operator account that can log in and fill receipts.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
