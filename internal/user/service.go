package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByToken(ctx context.Context, key string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, id int64) error

	// EnsureToken stores key as the user's token unless one already
	// exists, and returns whichever key is persisted afterwards.
	EnsureToken(ctx context.Context, userID int64, key string) (string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Login verifies the credentials and returns the user's persistent token.
// Repeated logins return the same token until it is revoked. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}

		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	key, err := generateToken()
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}

	key, err = s.repo.EnsureToken(ctx, u.ID, key)
	if err != nil {
		return "", nil, fmt.Errorf("storing token: %w", err)
	}

	return key, u, nil
}

// Authenticate resolves a bearer token to its user. The token is an opaque
// capability looked up on every authenticated call.
func (s *Service) Authenticate(ctx context.Context, key string) (*User, error) {
	return s.repo.GetUserByToken(ctx, key)
}

func (s *Service) Create(ctx context.Context, username, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

// Delete removes the user and their token. Receipts that reference the
// user keep existing; the schema clears the weak references.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}

// generateToken produces a 40-character hex key from 20 random bytes.
func generateToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
