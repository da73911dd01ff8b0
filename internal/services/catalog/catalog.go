// Package catalog maps catalog-service domain verbs onto the backend REST
// endpoints and normalizes the response envelopes.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/validate"
)

// DuplicateNameMessage is shown when the backend rejects a service name
// already in use.
const DuplicateNameMessage = "Ya existe un servicio con ese nombre. Por favor, elige un nombre diferente."

// API is the slice of the transport client the service needs.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (*models.Envelope, error)
	Post(ctx context.Context, path string, body any) (*models.Envelope, error)
	Put(ctx context.Context, path string, body any) (*models.Envelope, error)
	Delete(ctx context.Context, path string) (*models.Envelope, error)
}

// ListFilter narrows and paginates a catalog listing.
type ListFilter struct {
	Tipo  string
	Page  int
	Limit int
}

// Service implements the catalog operations.
type Service struct {
	api      API
	validate *validator.Validate
	log      *slog.Logger
}

// New creates a catalog Service.
func New(api API, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		validate: validator.New(),
		log:      log,
	}
}

// List returns a page of catalog services, tolerant of every known response
// nesting.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Servicio, models.PaginationInfo, error) {
	const op = "catalog.List"
	q := url.Values{}
	if filter.Tipo != "" {
		q.Set("tipo", filter.Tipo)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	env, err := s.api.Get(ctx, "/services", q)
	if err != nil {
		return nil, models.PaginationInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	items, pagination := extractList(env.Data)
	return items, pagination, nil
}

// GetByID fetches one catalog service.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Servicio, error) {
	const op = "catalog.GetByID"
	env, err := s.api.Get(ctx, "/services/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !env.Success {
		return nil, &apierr.NotFoundError{Message: "servicio no encontrado"}
	}
	var sv models.Servicio
	if err := json.Unmarshal(env.Data, &sv); err != nil {
		return nil, &apierr.NotFoundError{Message: "servicio no encontrado"}
	}
	return &sv, nil
}

// Create validates the payload locally, trims the text fields and posts the
// new service. A 409 becomes a ConflictError telling the user to pick a
// different name.
func (s *Service) Create(ctx context.Context, req models.CreateServicioRequest) (*models.Servicio, error) {
	const op = "catalog.Create"
	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Descripcion = strings.TrimSpace(req.Descripcion)

	if err := validate.Struct(s.validate, req); err != nil {
		return nil, err
	}

	env, err := s.api.Post(ctx, "/services", req)
	if err != nil {
		if apierr.IsConflict(err) {
			return nil, &apierr.ConflictError{Message: DuplicateNameMessage}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sv models.Servicio
	if err := json.Unmarshal(env.Data, &sv); err != nil {
		return nil, &apierr.RequestError{Message: "respuesta inesperada del servidor", Err: err}
	}
	s.log.Info("catalog service created", slog.String("op", op), slog.String("id", sv.ID))
	return &sv, nil
}

// Update sends a partial update with trimmed text fields.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateServicioRequest) (*models.Servicio, error) {
	const op = "catalog.Update"
	if req.Nombre != nil {
		n := strings.TrimSpace(*req.Nombre)
		req.Nombre = &n
	}
	if req.Descripcion != nil {
		d := strings.TrimSpace(*req.Descripcion)
		req.Descripcion = &d
	}
	if err := validate.Struct(s.validate, req); err != nil {
		return nil, err
	}

	env, err := s.api.Put(ctx, "/services/"+id, req)
	if err != nil {
		if apierr.IsConflict(err) {
			return nil, &apierr.ConflictError{Message: DuplicateNameMessage}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var sv models.Servicio
	if err := json.Unmarshal(env.Data, &sv); err != nil {
		return nil, &apierr.RequestError{Message: "respuesta inesperada del servidor", Err: err}
	}
	return &sv, nil
}

// Delete removes a catalog service. Deleting a service still referenced by
// a contract is rejected by the backend with a 409, surfaced unchanged.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "catalog.Delete"
	if _, err := s.api.Delete(ctx, "/services/"+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// extractList pulls the service array and pagination out of the envelope
// data: data.services, data.items, then data as a bare array.
func extractList(data json.RawMessage) ([]models.Servicio, models.PaginationInfo) {
	if len(data) == 0 {
		return []models.Servicio{}, models.DefaultPagination(0)
	}

	var nested struct {
		Services   []models.Servicio      `json:"services"`
		Items      []models.Servicio      `json:"items"`
		Pagination *models.PaginationInfo `json:"pagination"`
	}
	if err := json.Unmarshal(data, &nested); err == nil {
		items := nested.Services
		if items == nil {
			items = nested.Items
		}
		if items != nil {
			if nested.Pagination != nil {
				return items, *nested.Pagination
			}
			return items, models.DefaultPagination(len(items))
		}
	}

	var bare []models.Servicio
	if err := json.Unmarshal(data, &bare); err == nil && bare != nil {
		return bare, models.DefaultPagination(len(bare))
	}
	return []models.Servicio{}, models.DefaultPagination(0)
}
