// Package auth maps credential exchange onto the backend auth endpoints.
// It is consumed by the session manager, which owns persistence and state.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/lib/sl"
	"github.com/telecomplus/contratos/internal/models"
)

// API is the slice of the transport client the service needs.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (*models.Envelope, error)
	Post(ctx context.Context, path string, body any) (*models.Envelope, error)
}

// Credentials is the token+user pair returned by login and register.
type Credentials struct {
	Token string         `json:"token"`
	User  models.Usuario `json:"user"`
}

// Service implements the raw auth calls.
type Service struct {
	api API
	log *slog.Logger
}

// New creates an auth Service.
func New(api API, log *slog.Logger) *Service {
	return &Service{api: api, log: log}
}

// Login exchanges credentials for a token and user. Backend rejections come
// back as AuthError with the backend's message.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*Credentials, error) {
	return s.exchange(ctx, "/auth/login", req, "Error al iniciar sesión")
}

// Register creates an account and exchanges it for a token and user.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*Credentials, error) {
	return s.exchange(ctx, "/auth/register", req, "Error al registrarse")
}

// Logout notifies the backend. Callers treat failure as non-fatal.
func (s *Service) Logout(ctx context.Context) error {
	const op = "auth.Logout"
	if _, err := s.api.Post(ctx, "/auth/logout", nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Profile fetches the current user, used to revalidate a restored token.
func (s *Service) Profile(ctx context.Context) (*models.Usuario, error) {
	const op = "auth.Profile"
	env, err := s.api.Get(ctx, "/auth/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !env.Success {
		return nil, &apierr.RequestError{Message: env.ErrorText()}
	}
	var u models.Usuario
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return nil, &apierr.RequestError{Message: "respuesta inesperada del servidor", Err: err}
	}
	u = u.Normalized()
	return &u, nil
}

func (s *Service) exchange(ctx context.Context, path string, req any, fallback string) (*Credentials, error) {
	const op = "auth.exchange"
	env, err := s.api.Post(ctx, path, req)
	if err != nil {
		s.log.Warn("credential exchange rejected", slog.String("path", path), sl.Err(err))
		return nil, &apierr.AuthError{Message: authMessage(err, fallback)}
	}
	var creds Credentials
	if err := json.Unmarshal(env.Data, &creds); err != nil {
		return nil, &apierr.AuthError{Message: fallback}
	}
	if creds.Token == "" {
		return nil, &apierr.AuthError{Message: fallback}
	}
	creds.User = creds.User.Normalized()
	return &creds, nil
}

// authMessage extracts the backend's human-readable message, falling back to
// a generic localized one.
func authMessage(err error, fallback string) string {
	var re *apierr.RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ve *apierr.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if err != nil && !errors.Is(err, apierr.ErrSessionExpired) {
		return err.Error()
	}
	return fallback
}
