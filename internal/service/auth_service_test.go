package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"reverselearn/internal/model"
)

type fakeUserRepo struct {
	byEmail map[string]*model.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) (string, error) {
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	r.byEmail[user.Email] = user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.byEmail[email], nil
}

func newTestAuthService() *AuthService {
	return NewAuthService(newFakeUserRepo(), "test-secret", time.Hour)
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "teacher@example.com", "hunter22"); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	resp, err := svc.Login(ctx, "teacher@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	claims, err := svc.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Email != "teacher@example.com" {
		t.Errorf("claims email = %q", claims.Email)
	}
	if claims.UserID == "" {
		t.Error("claims should carry the user id")
	}
	if claims.ExpiresAt == nil {
		t.Error("token must carry an expiry")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "a@b.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Signup(ctx, "a@b.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	// Email comparison is case-insensitive
	if err := svc.Signup(ctx, "A@B.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken for case variant, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "a@b.com", "correct"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "a@b.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@b.com", "correct"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthRejectsMissingFields(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	if err := svc.Signup(ctx, "", "pw"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
	if err := svc.Signup(ctx, "a@b.com", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService()
	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}

	// Token signed with a different secret
	other := NewAuthService(newFakeUserRepo(), "other-secret", time.Hour)
	if err := other.Signup(context.Background(), "x@y.com", "pw"); err != nil {
		t.Fatal(err)
	}
	resp, err := other.Login(context.Background(), "x@y.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(resp.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
