package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/service"

	"go.uber.org/zap"
)

// fakeUserStore is an in-memory port.UserStore.
type fakeUserStore struct {
	users  map[string]*domain.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
	if _, exists := f.users[email]; exists {
		return nil, &domain.ErrConflict{Message: "email already registered"}
	}
	f.nextID++
	u := &domain.User{ID: f.nextID, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: fmt.Sprintf("%d", id)}
}

func (f *fakeUserStore) Ping(_ context.Context) error { return nil }
func (f *fakeUserStore) Close() error                 { return nil }

func newAuthService() *service.AuthService {
	return service.NewAuthService(newFakeUserStore(), "test-secret", time.Hour, zap.NewNop())
}

func TestSignupAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	signup, err := svc.Signup(ctx, &domain.SignupRequest{
		Name:     "Priya Sharma",
		Email:    "Priya@Example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatal(err)
	}
	if signup.UserID == 0 {
		t.Error("expected a user id")
	}

	// Email lookup is case-insensitive via lowercasing at the boundary.
	login, err := svc.Login(ctx, &domain.LoginRequest{
		Email:    "priya@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatal(err)
	}
	if login.AccessToken == "" {
		t.Error("expected an access token")
	}
	if login.User.Name != "Priya Sharma" {
		t.Errorf("unexpected user %+v", login.User)
	}

	claims, err := svc.ValidateAccessToken(login.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != signup.UserID {
		t.Errorf("token user id %d, want %d", claims.UserID, signup.UserID)
	}

	profile, err := svc.Profile(ctx, claims.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Email != "priya@example.com" {
		t.Errorf("unexpected profile %+v", profile)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, &domain.SignupRequest{
		Name: "A", Email: "a@example.com", Password: "password123",
	}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Login(ctx, &domain.LoginRequest{Email: "a@example.com", Password: "wrong"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService()

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "ghost@example.com", Password: "x"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.SignupRequest
	}{
		{"missing name", domain.SignupRequest{Email: "a@example.com", Password: "password123"}},
		{"bad email", domain.SignupRequest{Name: "A", Email: "not-an-email", Password: "password123"}},
		{"short password", domain.SignupRequest{Name: "A", Email: "a@example.com", Password: "short"}},
		{"oversized password", domain.SignupRequest{Name: "A", Email: "a@example.com", Password: strings.Repeat("x", 73)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, &tt.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	req := &domain.SignupRequest{Name: "A", Email: "dup@example.com", Password: "password123"}
	if _, err := svc.Signup(ctx, req); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Signup(ctx, req)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService()

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := svc.ValidateAccessToken(token); err == nil {
			t.Errorf("expected rejection for token %q", token)
		}
	}
}
