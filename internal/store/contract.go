// Package store holds the in-memory source of truth per entity type for the
// front-end: the cached list, its pagination snapshot, and the loading and
// error flags, mutated optimistically after each remote operation.
//
// Stores give no ordering guarantee across concurrent mutations: the last
// response to resolve wins for the loading and error flags. Operations on
// disjoint entries apply independently; same-entity races are last-write-wins
// with no version check.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/contract"
)

// ContractService is the slice of the contract domain service the store uses.
type ContractService interface {
	List(ctx context.Context, filter contract.ListFilter) ([]models.Contrato, models.PaginationInfo, error)
	GetByID(ctx context.Context, id string) (*models.Contrato, error)
	Create(ctx context.Context, req models.CreateContratoRequest) (*models.Contrato, error)
	Update(ctx context.Context, id string, req models.UpdateContratoRequest) (*models.Contrato, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.ContractStats, error)
	ExpiringSoon(ctx context.Context, window time.Duration) ([]models.Contrato, error)
}

// ContractStore caches the currently-rendered contract list. Construct one
// per application with NewContractStore and pass it by reference; there is
// no package-level singleton.
type ContractStore struct {
	mu  sync.Mutex
	svc ContractService
	log *slog.Logger

	contratos  []models.Contrato
	pagination models.PaginationInfo
	stats      *models.ContractStats
	isLoading  bool
	err        string
}

// NewContractStore creates an empty store backed by svc.
func NewContractStore(svc ContractService, log *slog.Logger) *ContractStore {
	return &ContractStore{
		svc:        svc,
		log:        log,
		contratos:  []models.Contrato{},
		pagination: models.DefaultPagination(0),
	}
}

// FetchList replaces the cached list and pagination wholesale. On failure
// the previous cache is preserved and only the error flag is set.
func (s *ContractStore) FetchList(ctx context.Context, filter contract.ListFilter) error {
	s.begin()
	items, pagination, err := s.svc.List(ctx, filter)
	if err != nil {
		s.fail(err, "Error al cargar contratos")
		return err
	}
	s.mu.Lock()
	if items == nil {
		items = []models.Contrato{}
	}
	s.contratos = items
	s.pagination = pagination
	s.isLoading = false
	s.mu.Unlock()
	return nil
}

// GetByID is a pass-through read for detail and edit views; it never mutates
// the cached list. Failures are recorded in the store error and returned.
func (s *ContractStore) GetByID(ctx context.Context, id string) (*models.Contrato, error) {
	s.begin()
	c, err := s.svc.GetByID(ctx, id)
	if err != nil {
		s.fail(err, "Error al obtener contrato")
		return nil, err
	}
	s.ready()
	return c, nil
}

// Create posts the payload and, on success, appends the created contract to
// the cached list. No re-sort, no dedupe.
func (s *ContractStore) Create(ctx context.Context, req models.CreateContratoRequest) (*models.Contrato, error) {
	s.begin()
	created, err := s.svc.Create(ctx, req)
	if err != nil {
		s.fail(err, "Error al crear contrato")
		return nil, err
	}
	s.mu.Lock()
	if s.contratos == nil {
		s.contratos = []models.Contrato{}
	}
	s.contratos = append(s.contratos, *created)
	s.isLoading = false
	s.mu.Unlock()
	return created, nil
}

// Update patches the contract and replaces the one matching cached entry by
// id, leaving the array order unchanged.
func (s *ContractStore) Update(ctx context.Context, id string, req models.UpdateContratoRequest) (*models.Contrato, error) {
	s.begin()
	updated, err := s.svc.Update(ctx, id, req)
	if err != nil {
		s.fail(err, "Error al actualizar contrato")
		return nil, err
	}
	s.mu.Lock()
	if s.contratos == nil {
		s.contratos = []models.Contrato{}
	}
	for i := range s.contratos {
		if s.contratos[i].ID == id {
			s.contratos[i] = *updated
		}
	}
	s.isLoading = false
	s.mu.Unlock()
	return updated, nil
}

// Delete removes the contract remotely and drops the cached entry. On
// failure the caller must not assume removal.
func (s *ContractStore) Delete(ctx context.Context, id string) error {
	s.begin()
	if err := s.svc.Delete(ctx, id); err != nil {
		s.fail(err, "Error al eliminar contrato")
		return err
	}
	s.mu.Lock()
	s.removeLocked(id)
	s.isLoading = false
	s.mu.Unlock()
	return nil
}

// FetchStats refreshes the aggregate snapshot shown on the dashboard.
func (s *ContractStore) FetchStats(ctx context.Context) (*models.ContractStats, error) {
	s.begin()
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		s.fail(err, "Error al cargar estadísticas")
		return nil, err
	}
	s.mu.Lock()
	s.stats = stats
	s.isLoading = false
	s.mu.Unlock()
	return stats, nil
}

// ListByEstado is a pass-through filtered read; the cache is untouched.
func (s *ContractStore) ListByEstado(ctx context.Context, estado string) ([]models.Contrato, error) {
	s.begin()
	items, _, err := s.svc.List(ctx, contract.ListFilter{Estado: estado})
	if err != nil {
		s.fail(err, "Error al obtener contratos por estado")
		return nil, err
	}
	s.ready()
	return items, nil
}

// ExpiringSoon is a pass-through read of contracts ending within 30 days.
func (s *ContractStore) ExpiringSoon(ctx context.Context) ([]models.Contrato, error) {
	s.begin()
	items, err := s.svc.ExpiringSoon(ctx, 30*24*time.Hour)
	if err != nil {
		s.fail(err, "Error al obtener contratos próximos a vencer")
		return nil, err
	}
	s.ready()
	return items, nil
}

// ClearError resets the error flag without touching loading or cached data.
func (s *ContractStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// Items returns a copy of the cached list.
func (s *ContractStore) Items() []models.Contrato {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Contrato, len(s.contratos))
	copy(out, s.contratos)
	return out
}

// Pagination returns the cached pagination snapshot.
func (s *ContractStore) Pagination() models.PaginationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// Stats returns the cached stats snapshot, or false before the first fetch.
func (s *ContractStore) Stats() (models.ContractStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return models.ContractStats{}, false
	}
	return *s.stats, true
}

// IsLoading reports whether an operation is in flight.
func (s *ContractStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// Error returns the last recorded error message, empty when none.
func (s *ContractStore) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// removeLocked drops the entry with the given id. Applying it again for the
// same id is a no-op. Callers hold the mutex.
func (s *ContractStore) removeLocked(id string) {
	if s.contratos == nil {
		s.contratos = []models.Contrato{}
	}
	kept := s.contratos[:0]
	for _, c := range s.contratos {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.contratos = kept
}

func (s *ContractStore) begin() {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *ContractStore) ready() {
	s.mu.Lock()
	s.isLoading = false
	s.mu.Unlock()
}

func (s *ContractStore) fail(err error, fallback string) {
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
