package contract

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/models"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Get(ctx context.Context, path string, query url.Values) (*models.Envelope, error) {
	args := m.Called(ctx, path, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Envelope), args.Error(1)
}

func (m *MockAPI) Post(ctx context.Context, path string, body any) (*models.Envelope, error) {
	args := m.Called(ctx, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Envelope), args.Error(1)
}

func (m *MockAPI) Put(ctx context.Context, path string, body any) (*models.Envelope, error) {
	args := m.Called(ctx, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Envelope), args.Error(1)
}

func (m *MockAPI) Delete(ctx context.Context, path string) (*models.Envelope, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Envelope), args.Error(1)
}

var _ API = (*MockAPI)(nil)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(api API, now time.Time) *Service {
	s := New(api, noopLogger())
	s.now = func() time.Time { return now }
	return s
}

func envelope(data string) *models.Envelope {
	return &models.Envelope{Success: true, Data: json.RawMessage(data)}
}

func TestList_ResponseShapes(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		expectedLen   int
		expectedTotal int
		expectedPage  int
	}{
		{
			name: "contracts key with pagination",
			data: `{"contracts":[{"_id":"c1","numero":"CT-001"},{"_id":"c2","numero":"CT-002"}],
				"pagination":{"currentPage":2,"totalPages":2,"totalItems":12,"itemsPerPage":10,"hasNextPage":false,"hasPrevPage":true}}`,
			expectedLen:   2,
			expectedTotal: 12,
			expectedPage:  2,
		},
		{
			name:          "items key without pagination",
			data:          `{"items":[{"_id":"c1","numero":"CT-001"}]}`,
			expectedLen:   1,
			expectedTotal: 1,
			expectedPage:  1,
		},
		{
			name:          "bare array",
			data:          `[{"_id":"c1","numero":"CT-001"},{"_id":"c2","numero":"CT-002"},{"_id":"c3","numero":"CT-003"}]`,
			expectedLen:   3,
			expectedTotal: 3,
			expectedPage:  1,
		},
		{
			name:          "null data",
			data:          `null`,
			expectedLen:   0,
			expectedTotal: 0,
			expectedPage:  1,
		},
		{
			name:          "unknown object shape",
			data:          `{"something":"else"}`,
			expectedLen:   0,
			expectedTotal: 0,
			expectedPage:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			api.On("Get", mock.Anything, "/contracts", mock.Anything).Return(envelope(tt.data), nil)

			svc := newTestService(api, time.Now())
			items, pagination, err := svc.List(context.Background(), ListFilter{})

			require.NoError(t, err)
			assert.Len(t, items, tt.expectedLen)
			assert.Equal(t, tt.expectedTotal, pagination.TotalItems)
			assert.Equal(t, tt.expectedPage, pagination.CurrentPage)
		})
	}
}

func TestList_ForwardsFilterAsQuery(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, "/contracts", mock.MatchedBy(func(q url.Values) bool {
		return q.Get("estado") == "Activo" && q.Get("page") == "2" && q.Get("limit") == "10"
	})).Return(envelope(`{"contracts":[]}`), nil)

	svc := newTestService(api, time.Now())
	_, _, err := svc.List(context.Background(), ListFilter{Estado: "Activo", Page: 2, Limit: 10})

	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestGetByID_RequestsHydration(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, "/contracts/c1", mock.MatchedBy(func(q url.Values) bool {
		return q.Get("populate") == "servicios"
	})).Return(envelope(`{"_id":"c1","numero":"CT-001","servicios_ids":["s1"],"servicios":[{"_id":"s1","nombre":"Fibra"}]}`), nil)

	svc := newTestService(api, time.Now())
	c, err := svc.GetByID(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, "CT-001", c.Numero)
	require.Len(t, c.Servicios, 1)
	assert.Equal(t, "Fibra", c.Servicios[0].Nombre)
}

func TestGetByID_UnsuccessfulEnvelope(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, "/contracts/missing", mock.Anything).
		Return(&models.Envelope{Success: false, Message: "Contrato no encontrado"}, nil)

	svc := newTestService(api, time.Now())
	_, err := svc.GetByID(context.Background(), "missing")

	require.True(t, apierr.IsNotFound(err))
	assert.Equal(t, "Contrato no encontrado", err.Error())
}

func TestCreate_NormalizesNumero(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	api := new(MockAPI)
	api.On("Post", mock.Anything, "/contracts", mock.MatchedBy(func(body any) bool {
		req, ok := body.(models.CreateContratoRequest)
		return ok && req.Numero == "CT-2025-001"
	})).Return(envelope(`{"_id":"c1","numero":"CT-2025-001"}`), nil)

	svc := newTestService(api, now)
	created, err := svc.Create(context.Background(), models.CreateContratoRequest{
		Numero:       "  ct-2025-001 ",
		FechaInicio:  "2025-06-10",
		FechaFin:     "2026-06-10",
		Estado:       models.EstadoActivo,
		ServiciosIDs: []string{"s1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "c1", created.ID)
	api.AssertExpectations(t)
}

func TestCreate_LocalRejectionsNeverReachNetwork(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  models.CreateContratoRequest
	}{
		{
			name: "missing fields",
			req:  models.CreateContratoRequest{},
		},
		{
			name: "invalid numero characters",
			req: models.CreateContratoRequest{
				Numero: "CT_001!", FechaInicio: "2025-06-10", FechaFin: "2026-06-10",
				Estado: models.EstadoActivo, ServiciosIDs: []string{"s1"},
			},
		},
		{
			name: "end date not after start",
			req: models.CreateContratoRequest{
				Numero: "CT-001", FechaInicio: "2025-06-10", FechaFin: "2025-06-10",
				Estado: models.EstadoActivo, ServiciosIDs: []string{"s1"},
			},
		},
		{
			name: "start date in the past",
			req: models.CreateContratoRequest{
				Numero: "CT-001", FechaInicio: "2025-05-01", FechaFin: "2026-06-10",
				Estado: models.EstadoActivo, ServiciosIDs: []string{"s1"},
			},
		},
		{
			name: "unparseable dates",
			req: models.CreateContratoRequest{
				Numero: "CT-001", FechaInicio: "mañana", FechaFin: "después",
				Estado: models.EstadoActivo, ServiciosIDs: []string{"s1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			svc := newTestService(api, now)

			_, err := svc.Create(context.Background(), tt.req)

			assert.True(t, apierr.IsValidation(err), "expected validation error, got %v", err)
			api.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate_PartialPayload(t *testing.T) {
	estado := models.EstadoSuspendido
	api := new(MockAPI)
	api.On("Put", mock.Anything, "/contracts/c1", mock.Anything).
		Return(envelope(`{"_id":"c1","numero":"CT-001","estado":"Suspendido"}`), nil)

	svc := newTestService(api, time.Now())
	updated, err := svc.Update(context.Background(), "c1", models.UpdateContratoRequest{Estado: &estado})

	require.NoError(t, err)
	assert.Equal(t, models.EstadoSuspendido, updated.Estado)
}

func TestUpdate_DatesCheckedOnlyWhenBothSet(t *testing.T) {
	inicio := "2030-01-01"
	api := new(MockAPI)
	api.On("Put", mock.Anything, "/contracts/c1", mock.Anything).
		Return(envelope(`{"_id":"c1","numero":"CT-001"}`), nil)

	svc := newTestService(api, time.Now())
	_, err := svc.Update(context.Background(), "c1", models.UpdateContratoRequest{FechaInicio: &inicio})

	require.NoError(t, err)

	fin := "2029-01-01"
	api2 := new(MockAPI)
	svc2 := newTestService(api2, time.Now())
	_, err = svc2.Update(context.Background(), "c1", models.UpdateContratoRequest{FechaInicio: &inicio, FechaFin: &fin})

	assert.True(t, apierr.IsValidation(err))
	api2.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestStats(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, "/contracts/stats", mock.Anything).
		Return(envelope(`{"total":3,"porEstado":{"Activo":2,"Cancelado":1},"porTipoServicio":{"Internet":2}}`), nil)

	svc := newTestService(api, time.Now())
	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.PorEstado[models.EstadoActivo])
	assert.Equal(t, 2, stats.PorTipoServicio[models.TipoInternet])
}

func TestExpiringSoon(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	api := new(MockAPI)
	api.On("Get", mock.Anything, "/contracts", mock.Anything).Return(envelope(`{"contracts":[
		{"_id":"c1","numero":"CT-001","fechaFin":"2025-06-15"},
		{"_id":"c2","numero":"CT-002","fechaFin":"2025-09-01"},
		{"_id":"c3","numero":"CT-003","fechaFin":"2025-05-01"}
	]}`), nil)

	svc := newTestService(api, now)
	items, err := svc.ExpiringSoon(context.Background(), 30*24*time.Hour)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CT-001", items[0].Numero)
}
