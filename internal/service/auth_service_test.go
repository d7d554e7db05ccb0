package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"primex/api/internal/config"
	"primex/api/internal/models"
	"primex/api/internal/repository"
	"primex/api/internal/security"
)

type fakeUserFinder map[string]models.User

func (f fakeUserFinder) FindByUsername(_ context.Context, username string) (models.User, error) {
	user, ok := f[username]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeAdminFinder map[string]models.Admin

func (f fakeAdminFinder) FindByUsername(_ context.Context, username string) (models.Admin, error) {
	admin, ok := f[username]
	if !ok {
		return models.Admin{}, repository.ErrAdminNotFound
	}
	return admin, nil
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []models.SecurityEvent
}

func (r *fakeRecorder) LogEvent(event models.SecurityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *fakeRecorder) failedLogins() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType == "failed_login" {
			n++
		}
	}
	return n
}

func serviceConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:    "service-secret",
			JWTAccessTTL: time.Hour,
		},
	}
}

func mustHash(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestLoginSuccess(t *testing.T) {
	users := fakeUserFinder{
		"alice": {ID: 42, Username: "alice", PasswordHash: mustHash(t, "s3cret"), Status: models.UserStatusActive},
	}
	recorder := &fakeRecorder{}
	svc := NewAuthService(users, fakeAdminFinder{}, recorder, serviceConfig(), zerolog.Nop())

	result, err := svc.Login(context.Background(), LoginInput{Username: " alice ", Password: "s3cret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.ID != 42 {
		t.Errorf("user id = %d, want 42", result.User.ID)
	}

	claims, err := security.ParseAccessToken(result.Token, "service-secret")
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.PrincipalID != 42 || claims.IsAdmin {
		t.Errorf("claims = %+v, want user 42 without admin flag", claims)
	}
	if recorder.failedLogins() != 0 {
		t.Error("successful login recorded a failure event")
	}
}

func TestLoginFailures(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	users := fakeUserFinder{
		"alice":  {ID: 42, Username: "alice", PasswordHash: mustHash(t, "s3cret"), Status: models.UserStatusActive},
		"mallet": {ID: 43, Username: "mallet", PasswordHash: mustHash(t, "pw"), Status: models.UserStatusSuspended, SubscriptionEnd: &past},
	}

	tests := []struct {
		name       string
		input      LoginInput
		wantErr    error
		wantEvents int
	}{
		{"unknown user", LoginInput{Username: "nobody", Password: "x"}, ErrInvalidCredentials, 1},
		{"wrong password", LoginInput{Username: "alice", Password: "wrong"}, ErrInvalidCredentials, 1},
		{"inactive account", LoginInput{Username: "mallet", Password: "pw"}, ErrAccountInactive, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			svc := NewAuthService(users, fakeAdminFinder{}, recorder, serviceConfig(), zerolog.Nop())

			_, err := svc.Login(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got := recorder.failedLogins(); got != tt.wantEvents {
				t.Errorf("failed_login events = %d, want %d", got, tt.wantEvents)
			}
		})
	}
}

func TestAdminLoginIssuesAdminToken(t *testing.T) {
	admins := fakeAdminFinder{
		"root": {ID: 3, Username: "root", PasswordHash: mustHash(t, "hunter2"), Role: models.AdminRoleSuperAdmin, Status: models.UserStatusActive},
	}
	svc := NewAuthService(fakeUserFinder{}, admins, &fakeRecorder{}, serviceConfig(), zerolog.Nop())

	result, err := svc.AdminLogin(context.Background(), LoginInput{Username: "root", Password: "hunter2"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}

	claims, err := security.ParseAccessToken(result.Token, "service-secret")
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.PrincipalID != 3 || !claims.IsAdmin {
		t.Errorf("claims = %+v, want admin 3", claims)
	}
}

func TestLoginWithoutRecorder(t *testing.T) {
	svc := NewAuthService(fakeUserFinder{}, fakeAdminFinder{}, nil, serviceConfig(), zerolog.Nop())

	if _, err := svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidCredentials)
	}
}
