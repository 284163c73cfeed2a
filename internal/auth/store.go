package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// UserStore persists accounts.
type UserStore interface {
	Create(user User) (User, error)
	GetByEmail(email string) (User, error)
	GetByID(id string) (User, error)
}

// MemoryUserStore is an in-memory UserStore for tests and databaseless runs.
type MemoryUserStore struct {
	byID    map[string]User
	byEmail map[string]string
	mu      sync.RWMutex
	nextID  int
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(user User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return User{}, fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
	}

	s.nextID++
	user.ID = fmt.Sprintf("u-%d", s.nextID)
	user.CreatedAt = time.Now()
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *MemoryUserStore) GetByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return User{}, fmt.Errorf("user not found: %s", email)
	}
	return s.byID[id], nil
}

func (s *MemoryUserStore) GetByID(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return User{}, fmt.Errorf("user not found: %s", id)
	}
	return user, nil
}

// PostgresUserStore is a PostgreSQL-backed UserStore.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a PostgreSQL-backed user store.
func NewPostgresUserStore(pool *pgxpool.Pool) (*PostgresUserStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresUserStore{pool: pool}, nil
}

func (s *PostgresUserStore) Create(user User) (User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	// The unique index on users.email arbitrates concurrent signups, so
	// there is no pre-check; a duplicate surfaces as a unique violation.
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id::text, created_at`,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// isUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresUserStore) GetByEmail(email string) (User, error) {
	return s.getBy(`email = $1`, email)
}

func (s *PostgresUserStore) GetByID(id string) (User, error) {
	return s.getBy(`id = $1::uuid`, id)
}

func (s *PostgresUserStore) getBy(cond string, arg any) (User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var user User
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, email, name, password, is_admin, created_at
		 FROM users WHERE `+cond,
		arg,
	).Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user not found")
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
