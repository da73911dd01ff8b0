// Package profile maps the current-user profile operations onto the backend
// auth endpoints.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-playground/validator"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/validate"
)

// API is the slice of the transport client the service needs.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (*models.Envelope, error)
	Put(ctx context.Context, path string, body any) (*models.Envelope, error)
}

// Service implements the profile operations.
type Service struct {
	api      API
	validate *validator.Validate
	log      *slog.Logger
}

// New creates a profile Service.
func New(api API, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		validate: validator.New(),
		log:      log,
	}
}

// Get returns the current user, normalized to the canonical id field.
func (s *Service) Get(ctx context.Context) (*models.Usuario, error) {
	const op = "profile.Get"
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

// Update changes the current user's name and/or email.
func (s *Service) Update(ctx context.Context, req models.UpdateProfileRequest) (*models.Usuario, error) {
	const op = "profile.Update"
	if err := validate.Struct(s.validate, req); err != nil {
		return nil, err
	}
	env, err := s.api.Put(ctx, "/auth/profile", req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var u models.Usuario
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return nil, &apierr.RequestError{Message: "respuesta inesperada del servidor", Err: err}
	}
	u = u.Normalized()
	s.log.Info("profile updated", slog.String("op", op), slog.String("id", u.ID))
	return &u, nil
}

// ChangePassword changes the current user's password after a local length
// check on the new one.
func (s *Service) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	const op = "profile.ChangePassword"
	if err := validate.Struct(s.validate, req); err != nil {
		return err
	}
	if _, err := s.api.Put(ctx, "/auth/change-password", req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
