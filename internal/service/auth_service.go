package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"primex/api/internal/config"
	"primex/api/internal/models"
	"primex/api/internal/repository"
	"primex/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account not active")
)

// EventRecorder is the monitor surface the auth service reports to.
type EventRecorder interface {
	LogEvent(event models.SecurityEvent)
}

type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

type AdminFinder interface {
	FindByUsername(ctx context.Context, username string) (models.Admin, error)
}

type AuthService struct {
	users   UserFinder
	admins  AdminFinder
	monitor EventRecorder
	cfg     *config.AppConfig
	log     zerolog.Logger
}

func NewAuthService(users UserFinder, admins AdminFinder, monitor EventRecorder, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		admins:  admins,
		monitor: monitor,
		cfg:     cfg,
		log:     log,
	}
}

type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Username = strings.TrimSpace(input.Username)

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordFailedLogin(input, "unknown user")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		s.recordFailedLogin(input, "bad password")
		return LoginResult{}, ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return LoginResult{}, ErrAccountInactive
	}

	token, err := security.GenerateAccessToken(s.cfg.Security.JWTSecret, user.ID, false, s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

type AdminLoginResult struct {
	Token string
	Admin models.Admin
}

func (s *AuthService) AdminLogin(ctx context.Context, input LoginInput) (AdminLoginResult, error) {
	input.Username = strings.TrimSpace(input.Username)

	admin, err := s.admins.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			s.recordFailedLogin(input, "unknown admin")
			return AdminLoginResult{}, ErrInvalidCredentials
		}
		return AdminLoginResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, admin.PasswordHash)
	if err != nil || !ok {
		s.recordFailedLogin(input, "bad admin password")
		return AdminLoginResult{}, ErrInvalidCredentials
	}

	if admin.Status != models.UserStatusActive {
		return AdminLoginResult{}, ErrAccountInactive
	}

	token, err := security.GenerateAccessToken(s.cfg.Security.JWTSecret, admin.ID, true, s.cfg.Security.JWTAccessTTL)
	if err != nil {
		return AdminLoginResult{}, err
	}

	return AdminLoginResult{Token: token, Admin: admin}, nil
}

func (s *AuthService) recordFailedLogin(input LoginInput, reason string) {
	if s.monitor == nil {
		return
	}
	s.monitor.LogEvent(models.SecurityEvent{
		EventType:   "failed_login",
		Severity:    models.SeverityMedium,
		IPAddress:   input.IPAddress,
		UserAgent:   input.UserAgent,
		Username:    input.Username,
		Description: "Login failed: " + reason,
	})
}
