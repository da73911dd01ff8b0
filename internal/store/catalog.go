package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/catalog"
)

// CatalogService is the slice of the catalog domain service the store uses.
type CatalogService interface {
	List(ctx context.Context, filter catalog.ListFilter) ([]models.Servicio, models.PaginationInfo, error)
	GetByID(ctx context.Context, id string) (*models.Servicio, error)
	Create(ctx context.Context, req models.CreateServicioRequest) (*models.Servicio, error)
	Update(ctx context.Context, id string, req models.UpdateServicioRequest) (*models.Servicio, error)
	Delete(ctx context.Context, id string) error
}

// CatalogStore caches the currently-rendered catalog service list.
type CatalogStore struct {
	mu  sync.Mutex
	svc CatalogService
	log *slog.Logger

	servicios  []models.Servicio
	pagination models.PaginationInfo
	isLoading  bool
	err        string
}

// NewCatalogStore creates an empty store backed by svc.
func NewCatalogStore(svc CatalogService, log *slog.Logger) *CatalogStore {
	return &CatalogStore{
		svc:        svc,
		log:        log,
		servicios:  []models.Servicio{},
		pagination: models.DefaultPagination(0),
	}
}

// FetchList replaces the cached list and pagination wholesale, preserving
// the previous cache on failure.
func (s *CatalogStore) FetchList(ctx context.Context, filter catalog.ListFilter) error {
	s.begin()
	items, pagination, err := s.svc.List(ctx, filter)
	if err != nil {
		s.fail(err, "Error al cargar servicios")
		return err
	}
	s.mu.Lock()
	if items == nil {
		items = []models.Servicio{}
	}
	s.servicios = items
	s.pagination = pagination
	s.isLoading = false
	s.mu.Unlock()
	return nil
}

// GetByID is a pass-through read that never mutates the cached list.
func (s *CatalogStore) GetByID(ctx context.Context, id string) (*models.Servicio, error) {
	s.begin()
	sv, err := s.svc.GetByID(ctx, id)
	if err != nil {
		s.fail(err, "Error al obtener servicio")
		return nil, err
	}
	s.ready()
	return sv, nil
}

// Create posts the payload and appends the created service on success.
func (s *CatalogStore) Create(ctx context.Context, req models.CreateServicioRequest) (*models.Servicio, error) {
	s.begin()
	created, err := s.svc.Create(ctx, req)
	if err != nil {
		s.fail(err, "Error al crear servicio")
		return nil, err
	}
	s.mu.Lock()
	if s.servicios == nil {
		s.servicios = []models.Servicio{}
	}
	s.servicios = append(s.servicios, *created)
	s.isLoading = false
	s.mu.Unlock()
	return created, nil
}

// Update patches the service and replaces the matching cached entry by id.
func (s *CatalogStore) Update(ctx context.Context, id string, req models.UpdateServicioRequest) (*models.Servicio, error) {
	s.begin()
	updated, err := s.svc.Update(ctx, id, req)
	if err != nil {
		s.fail(err, "Error al actualizar servicio")
		return nil, err
	}
	s.mu.Lock()
	if s.servicios == nil {
		s.servicios = []models.Servicio{}
	}
	for i := range s.servicios {
		if s.servicios[i].ID == id {
			s.servicios[i] = *updated
		}
	}
	s.isLoading = false
	s.mu.Unlock()
	return updated, nil
}

// Delete removes the service remotely and drops the cached entry.
func (s *CatalogStore) Delete(ctx context.Context, id string) error {
	s.begin()
	if err := s.svc.Delete(ctx, id); err != nil {
		s.fail(err, "Error al eliminar servicio")
		return err
	}
	s.mu.Lock()
	s.removeLocked(id)
	s.isLoading = false
	s.mu.Unlock()
	return nil
}

// ListByTipo is a pass-through filtered read; the cache is untouched.
func (s *CatalogStore) ListByTipo(ctx context.Context, tipo string) ([]models.Servicio, error) {
	s.begin()
	items, _, err := s.svc.List(ctx, catalog.ListFilter{Tipo: tipo})
	if err != nil {
		s.fail(err, "Error al obtener servicios por tipo")
		return nil, err
	}
	s.ready()
	return items, nil
}

// ClearError resets the error flag without touching loading or cached data.
func (s *CatalogStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// Items returns a copy of the cached list.
func (s *CatalogStore) Items() []models.Servicio {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Servicio, len(s.servicios))
	copy(out, s.servicios)
	return out
}

// Pagination returns the cached pagination snapshot.
func (s *CatalogStore) Pagination() models.PaginationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// IsLoading reports whether an operation is in flight.
func (s *CatalogStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// Error returns the last recorded error message, empty when none.
func (s *CatalogStore) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *CatalogStore) removeLocked(id string) {
	if s.servicios == nil {
		s.servicios = []models.Servicio{}
	}
	kept := s.servicios[:0]
	for _, sv := range s.servicios {
		if sv.ID != id {
			kept = append(kept, sv)
		}
	}
	s.servicios = kept
}

func (s *CatalogStore) begin() {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *CatalogStore) ready() {
	s.mu.Lock()
	s.isLoading = false
	s.mu.Unlock()
}

func (s *CatalogStore) fail(err error, fallback string) {
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	s.mu.Lock()
	s.err = msg
	s.isLoading = false
	s.mu.Unlock()
	s.log.Warn("store operation failed", slog.String("error", msg))
}
