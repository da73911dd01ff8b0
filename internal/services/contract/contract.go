// Package contract maps contract domain verbs onto the backend REST
// endpoints and normalizes the heterogeneous response envelopes.
package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/validate"
)

// numeroPattern is the accepted contract number shape after trimming and
// upper-casing. Length is enforced by the struct tags.
var numeroPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// API is the slice of the transport client the service needs.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (*models.Envelope, error)
	Post(ctx context.Context, path string, body any) (*models.Envelope, error)
	Put(ctx context.Context, path string, body any) (*models.Envelope, error)
	Delete(ctx context.Context, path string) (*models.Envelope, error)
}

// ListFilter narrows and paginates a contract listing.
type ListFilter struct {
	Estado string
	Page   int
	Limit  int
}

// Service implements the contract operations.
type Service struct {
	api      API
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

// New creates a contract Service.
func New(api API, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// List returns a page of contracts. Shape drift in the response degrades to
// an empty list with default pagination, never to an error.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Contrato, models.PaginationInfo, error) {
	const op = "contract.List"
	q := url.Values{}
	if filter.Estado != "" {
		q.Set("estado", filter.Estado)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	env, err := s.api.Get(ctx, "/contracts", q)
	if err != nil {
		return nil, models.PaginationInfo{}, fmt.Errorf("%s: %w", op, err)
	}
	items, pagination := extractList(env.Data)
	return items, pagination, nil
}

// GetByID fetches one contract with its services hydrated.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Contrato, error) {
	const op = "contract.GetByID"
	q := url.Values{}
	q.Set("populate", "servicios")

	env, err := s.api.Get(ctx, "/contracts/"+id, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !env.Success {
		return nil, &apierr.NotFoundError{Message: notFoundMessage(env.Message)}
	}
	var c models.Contrato
	if err := json.Unmarshal(env.Data, &c); err != nil {
		return nil, &apierr.NotFoundError{Message: notFoundMessage("")}
	}
	return &c, nil
}

// Create validates the payload locally, normalizes the contract number and
// posts the new contract. Validation failures never reach the network.
func (s *Service) Create(ctx context.Context, req models.CreateContratoRequest) (*models.Contrato, error) {
	const op = "contract.Create"
	req.Numero = strings.ToUpper(strings.TrimSpace(req.Numero))

	if err := validate.Struct(s.validate, req); err != nil {
		return nil, err
	}
	if !numeroPattern.MatchString(req.Numero) {
		return nil, apierr.Validation("datos inválidos", apierr.FieldError{
			Field:   "Numero",
			Message: "el número de contrato solo puede contener letras mayúsculas, dígitos y guiones",
		})
	}
	if err := s.checkDates(req.FechaInicio, req.FechaFin, true); err != nil {
		return nil, err
	}

	env, err := s.api.Post(ctx, "/contracts", req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var c models.Contrato
	if err := json.Unmarshal(env.Data, &c); err != nil {
		return nil, &apierr.RequestError{Message: "respuesta inesperada del servidor", Err: err}
	}
	s.log.Info("contract created", slog.String("op", op), slog.String("id", c.ID))
	return &c, nil
}

// Update sends a partial update; unset fields stay untouched server-side.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateContratoRequest) (*models.Contrato, error) {
	const op = "contract.Update"
	if req.Numero != nil {
		n := strings.ToUpper(strings.TrimSpace(*req.Numero))
		req.Numero = &n
	}
	if err := validate.Struct(s.validate, req); err != nil {
		return nil, err
	}
	if req.Numero != nil && !numeroPattern.MatchString(*req.Numero) {
		return nil, apierr.Validation("datos inválidos", apierr.FieldError{
			Field:   "Numero",
			Message: "el número de contrato solo puede contener letras mayúsculas, dígitos y guiones",
		})
	}
	if req.FechaInicio != nil && req.FechaFin != nil {
		if err := s.checkDates(*req.FechaInicio, *req.FechaFin, false); err != nil {
			return nil, err
		}
	}

	env, err := s.api.Put(ctx, "/contracts/"+id, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var c models.Contrato
	if err := json.Unmarshal(env.Data, &c); err != nil {
		return nil, &apierr.RequestError{Message: "respuesta inesperada del servidor", Err: err}
	}
	return &c, nil
}

// Delete removes a contract by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "contract.Delete"
	if _, err := s.api.Delete(ctx, "/contracts/"+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stats returns aggregate contract counts by estado and by service tipo.
func (s *Service) Stats(ctx context.Context) (*models.ContractStats, error) {
	const op = "contract.Stats"
	env, err := s.api.Get(ctx, "/contracts/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var stats models.ContractStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		return nil, &apierr.RequestError{Message: "respuesta inesperada del servidor", Err: err}
	}
	return &stats, nil
}

// ExpiringSoon returns the contracts whose end date falls within the window.
// List endpoints never hydrate services, so results carry bare service ids.
func (s *Service) ExpiringSoon(ctx context.Context, window time.Duration) ([]models.Contrato, error) {
	const op = "contract.ExpiringSoon"
	items, _, err := s.List(ctx, ListFilter{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	out := make([]models.Contrato, 0)
	for _, c := range items {
		if c.ExpiresWithin(now, window) {
			out = append(out, c)
		}
	}
	return out, nil
}

// checkDates enforces ISO dates, strict ordering and, at creation time, a
// start date not in the past.
func (s *Service) checkDates(inicio, fin string, creating bool) error {
	start, err := parseFecha(inicio)
	if err != nil {
		return apierr.Validation("datos inválidos", apierr.FieldError{
			Field: "FechaInicio", Message: "la fecha de inicio debe tener formato ISO-8601",
		})
	}
	end, err := parseFecha(fin)
	if err != nil {
		return apierr.Validation("datos inválidos", apierr.FieldError{
			Field: "FechaFin", Message: "la fecha de fin debe tener formato ISO-8601",
		})
	}
	if !end.After(start) {
		return apierr.Validation("datos inválidos", apierr.FieldError{
			Field: "FechaFin", Message: "la fecha de fin debe ser posterior a la fecha de inicio",
		})
	}
	if creating {
		today := s.now().Truncate(24 * time.Hour)
		if start.Before(today) {
			return apierr.Validation("datos inválidos", apierr.FieldError{
				Field: "FechaInicio", Message: "la fecha de inicio no puede estar en el pasado",
			})
		}
	}
	return nil
}

func parseFecha(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func notFoundMessage(backend string) string {
	if backend != "" {
		return backend
	}
	return "contrato no encontrado"
}

// extractList pulls the contract array and pagination out of the envelope
// data, trying each known nesting in priority order:
// data.contracts, data.items, data as a bare array. Anything else yields an
// empty list and default pagination.
func extractList(data json.RawMessage) ([]models.Contrato, models.PaginationInfo) {
	if len(data) == 0 {
		return []models.Contrato{}, models.DefaultPagination(0)
	}

	var nested struct {
		Contracts  []models.Contrato      `json:"contracts"`
		Items      []models.Contrato      `json:"items"`
		Pagination *models.PaginationInfo `json:"pagination"`
	}
	if err := json.Unmarshal(data, &nested); err == nil {
		items := nested.Contracts
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

	var bare []models.Contrato
	if err := json.Unmarshal(data, &bare); err == nil && bare != nil {
		return bare, models.DefaultPagination(len(bare))
	}
	return []models.Contrato{}, models.DefaultPagination(0)
}
