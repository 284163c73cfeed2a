package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pyq-ai/pyq-assistant/internal/auth"
)

// Low cost keeps bcrypt fast in tests.
func newTestService() *auth.Service {
	return auth.NewService(auth.NewMemoryUserStore(), auth.NewMemoryTokenStore(), time.Hour, 4)
}

func TestService_RegisterLogin(t *testing.T) {
	svc := newTestService()

	user, err := svc.Register("a@example.com", "Asha", "correct horse battery")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Register() returned empty ID")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Error("password stored in plaintext")
	}

	token, err := svc.Login("a@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned empty token")
	}

	got, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("Authenticate() email = %q", got.Email)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register("", "x", "longenough"); err == nil {
		t.Error("Register() should require email")
	}
	if _, err := svc.Register("b@example.com", "x", "short"); err == nil {
		t.Error("Register() should require a password of at least 8 characters")
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Register("a@example.com", "x", "password-one"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := svc.Register("a@example.com", "y", "password-two")
	if !errors.Is(err, auth.ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestService_LoginBadCredentials(t *testing.T) {
	svc := newTestService()
	_, _ = svc.Register("a@example.com", "x", "the-password")

	if _, err := svc.Login("a@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("ghost@example.com", "the-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_Logout(t *testing.T) {
	svc := newTestService()
	_, _ = svc.Register("a@example.com", "x", "the-password")
	token, _ := svc.Login("a@example.com", "the-password")

	if err := svc.Logout(token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.Authenticate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Authenticate() after logout error = %v, want ErrInvalidToken", err)
	}

	// Revoking again is not an error.
	if err := svc.Logout(token); err != nil {
		t.Errorf("Logout() repeated error = %v", err)
	}
}

func TestService_AuthenticateUnknownToken(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Authenticate("deadbeef"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidToken", err)
	}
	if _, err := svc.Authenticate(""); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Authenticate(empty) error = %v, want ErrInvalidToken", err)
	}
}

func TestMemoryTokenStore_Expiry(t *testing.T) {
	store := auth.NewMemoryTokenStore()

	if err := store.Put("tok", "u-1", -time.Second); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := store.Get("tok"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Get() expired token error = %v, want ErrInvalidToken", err)
	}
}
