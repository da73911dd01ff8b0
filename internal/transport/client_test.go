package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/config"
	"github.com/telecomplus/contratos/internal/lib/token"
	"github.com/telecomplus/contratos/internal/session"
)

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Load(ctx context.Context) (session.Record, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(session.Record), args.Bool(1), args.Error(2)
}

func (m *MockSessionStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ SessionStore = (*MockSessionStore)(nil)

// fakeNavigator records forced navigations.
type fakeNavigator struct {
	route  string
	visits []string
}

func (n *fakeNavigator) CurrentRoute() string    { return n.route }
func (n *fakeNavigator) NavigateTo(route string) { n.visits = append(n.visits, route) }

var _ Navigator = (*fakeNavigator)(nil)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestClient(t *testing.T, baseURL string, store SessionStore, nav Navigator) *Client {
	t.Helper()
	return New(config.API{BaseURL: baseURL, Timeout: 5 * time.Second}, store, nav, noopLogger())
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := token.NewMaker("unit-secret", time.Hour).Generate("u1", "ana@example.com")
	require.NoError(t, err)
	return tok
}

func expiredToken(t *testing.T) string {
	t.Helper()
	tok, err := token.NewMaker("unit-secret", -time.Hour).Generate("u1", "ana@example.com")
	require.NoError(t, err)
	return tok
}

func TestClient_AttachesBearerToken(t *testing.T) {
	tok := validToken(t)
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	store := new(MockSessionStore)
	store.On("Load", mock.Anything).Return(session.Record{Token: tok}, true, nil)

	client := newTestClient(t, srv.URL, store, &fakeNavigator{route: "/"})
	env, err := client.Get(context.Background(), "/contracts", nil)

	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "Bearer "+tok, gotAuth)
}

func TestClient_NoSessionSendsUnauthenticated(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	store := new(MockSessionStore)
	store.On("Load", mock.Anything).Return(session.Record{}, false, nil)

	client := newTestClient(t, srv.URL, store, &fakeNavigator{route: "/"})
	_, err := client.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.com"})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ExpiredTokenNeverLeavesProcess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	store := new(MockSessionStore)
	store.On("Load", mock.Anything).Return(session.Record{Token: expiredToken(t)}, true, nil)
	store.On("Clear", mock.Anything).Return(nil)
	nav := &fakeNavigator{route: "/contratos"}

	client := newTestClient(t, srv.URL, store, nav)
	_, err := client.Get(context.Background(), "/contracts", nil)

	require.ErrorIs(t, err, apierr.ErrSessionExpired)
	assert.Equal(t, int32(0), hits.Load())
	assert.Equal(t, []string{LoginRoute}, nav.visits)
	store.AssertCalled(t, "Clear", mock.Anything)
}

func TestClient_UndecodableTokenPurgesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request should not leave the process")
	}))
	defer srv.Close()

	store := new(MockSessionStore)
	store.On("Load", mock.Anything).Return(session.Record{Token: "garbage"}, true, nil)
	store.On("Clear", mock.Anything).Return(nil)
	nav := &fakeNavigator{route: "/"}

	client := newTestClient(t, srv.URL, store, nav)
	_, err := client.Get(context.Background(), "/contracts", nil)

	require.ErrorIs(t, err, apierr.ErrSessionExpired)
	assert.Equal(t, []string{LoginRoute}, nav.visits)
}

func TestClient_Unauthorized(t *testing.T) {
	tests := []struct {
		name         string
		currentRoute string
		wantVisits   []string
	}{
		{name: "redirects to login", currentRoute: "/contratos", wantVisits: []string{LoginRoute}},
		{name: "already on login, no redirect", currentRoute: LoginRoute, wantVisits: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"message":"token inválido"}`))
			}))
			defer srv.Close()

			store := new(MockSessionStore)
			store.On("Load", mock.Anything).Return(session.Record{Token: validToken(t)}, true, nil)
			store.On("Clear", mock.Anything).Return(nil)
			nav := &fakeNavigator{route: tt.currentRoute}

			client := newTestClient(t, srv.URL, store, nav)
			_, err := client.Get(context.Background(), "/contracts", nil)

			require.ErrorIs(t, err, apierr.ErrSessionExpired)
			var re *apierr.RequestError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, http.StatusUnauthorized, re.Status)
			assert.Equal(t, "token inválido", re.Message)
			assert.Equal(t, tt.wantVisits, nav.visits)
			store.AssertCalled(t, "Clear", mock.Anything)
		})
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "404 becomes not found",
			status: http.StatusNotFound,
			body:   `{"success":false,"message":"contrato no encontrado"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, apierr.IsNotFound(err))
				assert.Equal(t, "contrato no encontrado", err.Error())
			},
		},
		{
			name:   "409 becomes conflict",
			status: http.StatusConflict,
			body:   `{"success":false}`,
			check: func(t *testing.T, err error) {
				assert.True(t, apierr.IsConflict(err))
				assert.Equal(t, "el recurso ya existe", err.Error())
			},
		},
		{
			name:   "422 with field errors becomes validation",
			status: http.StatusUnprocessableEntity,
			body:   `{"success":false,"message":"datos inválidos","errors":[{"field":"numero","message":"el campo numero es obligatorio"}]}`,
			check: func(t *testing.T, err error) {
				var ve *apierr.ValidationError
				require.ErrorAs(t, err, &ve)
				require.Len(t, ve.Fields, 1)
				assert.Equal(t, "numero", ve.Fields[0].Field)
			},
		},
		{
			name:   "500 becomes request error",
			status: http.StatusInternalServerError,
			body:   `{"success":false,"message":"error interno"}`,
			check: func(t *testing.T, err error) {
				var re *apierr.RequestError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, http.StatusInternalServerError, re.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := new(MockSessionStore)
			store.On("Load", mock.Anything).Return(session.Record{}, false, nil)

			client := newTestClient(t, srv.URL, store, &fakeNavigator{route: "/"})
			_, err := client.Get(context.Background(), "/contracts", nil)

			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_ConnectionFailure(t *testing.T) {
	store := new(MockSessionStore)
	store.On("Load", mock.Anything).Return(session.Record{}, false, nil)

	client := newTestClient(t, "http://127.0.0.1:1", store, &fakeNavigator{route: "/"})
	_, err := client.Get(context.Background(), "/contracts", nil)

	var re *apierr.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "error de conexión con el servidor", re.Message)
}
