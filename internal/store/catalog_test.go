package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/catalog"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, filter catalog.ListFilter) ([]models.Servicio, models.PaginationInfo, error) {
	args := m.Called(ctx, filter)
	var items []models.Servicio
	if args.Get(0) != nil {
		items = args.Get(0).([]models.Servicio)
	}
	return items, args.Get(1).(models.PaginationInfo), args.Error(2)
}

func (m *MockCatalogService) GetByID(ctx context.Context, id string) (*models.Servicio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Servicio), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, req models.CreateServicioRequest) (*models.Servicio, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Servicio), args.Error(1)
}

func (m *MockCatalogService) Update(ctx context.Context, id string, req models.UpdateServicioRequest) (*models.Servicio, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Servicio), args.Error(1)
}

func (m *MockCatalogService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ CatalogService = (*MockCatalogService)(nil)

func seedServicios() []models.Servicio {
	return []models.Servicio{
		{ID: "s1", Nombre: "Fibra 600", Tipo: models.TipoInternet},
		{ID: "s2", Nombre: "TV Total", Tipo: models.TipoTelevision},
	}
}

func TestCatalogStore_FetchListReplacesCache(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("List", mock.Anything, mock.Anything).
		Return(seedServicios(), models.DefaultPagination(2), nil)

	s := NewCatalogStore(svc, noopLogger())
	require.NoError(t, s.FetchList(context.Background(), catalog.ListFilter{}))

	assert.Len(t, s.Items(), 2)
	assert.Empty(t, s.Error())
}

func TestCatalogStore_CreateConflictPreservesCache(t *testing.T) {
	ctx := context.Background()
	svc := new(MockCatalogService)
	svc.On("List", mock.Anything, mock.Anything).
		Return(seedServicios(), models.DefaultPagination(2), nil)
	svc.On("Create", mock.Anything, mock.Anything).
		Return(nil, &apierr.ConflictError{Message: catalog.DuplicateNameMessage})

	s := NewCatalogStore(svc, noopLogger())
	require.NoError(t, s.FetchList(ctx, catalog.ListFilter{}))

	_, err := s.Create(ctx, models.CreateServicioRequest{Nombre: "Fibra 600"})
	require.Error(t, err)
	assert.Len(t, s.Items(), 2, "a rejected create must not touch the cache")
	assert.Equal(t, catalog.DuplicateNameMessage, s.Error())
}

func TestCatalogStore_UpdateReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	updated := &models.Servicio{ID: "s1", Nombre: "Fibra 1000", Tipo: models.TipoInternet}
	svc := new(MockCatalogService)
	svc.On("List", mock.Anything, mock.Anything).
		Return(seedServicios(), models.DefaultPagination(2), nil)
	svc.On("Update", mock.Anything, "s1", mock.Anything).Return(updated, nil)

	s := NewCatalogStore(svc, noopLogger())
	require.NoError(t, s.FetchList(ctx, catalog.ListFilter{}))

	nombre := "Fibra 1000"
	_, err := s.Update(ctx, "s1", models.UpdateServicioRequest{Nombre: &nombre})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Fibra 1000", items[0].Nombre)
}

func TestCatalogStore_DeleteDropsEntry(t *testing.T) {
	ctx := context.Background()
	svc := new(MockCatalogService)
	svc.On("List", mock.Anything, mock.Anything).
		Return(seedServicios(), models.DefaultPagination(2), nil)
	svc.On("Delete", mock.Anything, "s2").Return(nil)

	s := NewCatalogStore(svc, noopLogger())
	require.NoError(t, s.FetchList(ctx, catalog.ListFilter{}))

	require.NoError(t, s.Delete(ctx, "s2"))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].ID)
}

func TestCatalogStore_DeleteConflictKeepsEntry(t *testing.T) {
	ctx := context.Background()
	svc := new(MockCatalogService)
	svc.On("List", mock.Anything, mock.Anything).
		Return(seedServicios(), models.DefaultPagination(2), nil)
	svc.On("Delete", mock.Anything, "s1").
		Return(&apierr.ConflictError{Message: "el servicio está referenciado por un contrato"})

	s := NewCatalogStore(svc, noopLogger())
	require.NoError(t, s.FetchList(ctx, catalog.ListFilter{}))

	require.Error(t, s.Delete(ctx, "s1"))
	assert.Len(t, s.Items(), 2)
}
