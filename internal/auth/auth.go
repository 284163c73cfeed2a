// Package auth implements credential storage and opaque bearer-token
// authentication. Passwords are bcrypt-hashed in Postgres; tokens are random
// identifiers held in Redis with a TTL.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for an unknown or expired token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// User is an account record. PasswordHash never leaves the package.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service ties the user store and token store together.
type Service struct {
	users      UserStore
	tokens     TokenStore
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates an auth service. A bcryptCost of 0 uses the library
// default.
func NewService(users UserStore, tokens TokenStore, tokenTTL time.Duration, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(email, name, password string) (User, error) {
	if email == "" {
		return User{}, fmt.Errorf("email is required")
	}
	if len(password) < 8 {
		return User{}, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		// Same error for unknown email and wrong password.
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := generateToken()
	if err := s.tokens.Put(token, user.ID, s.tokenTTL); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Logout revokes a token. Revoking an unknown token is not an error.
func (s *Service) Logout(token string) error {
	return s.tokens.Delete(token)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(token string) (User, error) {
	if token == "" {
		return User{}, ErrInvalidToken
	}
	userID, err := s.tokens.Get(token)
	if err != nil {
		return User{}, ErrInvalidToken
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return User{}, ErrInvalidToken
	}
	return user, nil
}

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
