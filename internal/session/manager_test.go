package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/lib/token"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/auth"
)

// memStore is an in-memory Store for unit tests.
type memStore struct {
	rec   *Record
	saves int
}

func (s *memStore) Save(_ context.Context, tok string, user models.Usuario) error {
	s.rec = &Record{Token: tok, Usuario: user, ExpiresAt: time.Now().Add(time.Hour)}
	s.saves++
	return nil
}

func (s *memStore) Load(_ context.Context) (Record, bool, error) {
	if s.rec == nil {
		return Record{}, false, nil
	}
	return *s.rec, true, nil
}

func (s *memStore) Clear(_ context.Context) error {
	s.rec = nil
	return nil
}

var _ Store = (*memStore)(nil)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, req models.LoginRequest) (*auth.Credentials, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Credentials), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*auth.Credentials, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Credentials), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAuthAPI) Profile(ctx context.Context) (*models.Usuario, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

var _ AuthAPI = (*MockAuthAPI)(nil)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	tok, err := token.NewMaker("unit-secret", ttl).Generate("u1", "ana@example.com")
	require.NoError(t, err)
	return tok
}

func TestManager_RestoreWithoutRecord(t *testing.T) {
	api := new(MockAuthAPI)
	mgr := NewManager(&memStore{}, api, noopLogger())

	state := mgr.Restore(context.Background())

	assert.Equal(t, Anonymous, state)
	assert.False(t, mgr.IsAuthenticated())
	api.AssertNotCalled(t, "Profile", mock.Anything)
}

func TestManager_RestoreRevalidatesAgainstBackend(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	require.NoError(t, store.Save(ctx, signedToken(t, time.Hour), models.Usuario{ID: "u1"}))

	api := new(MockAuthAPI)
	api.On("Profile", mock.Anything).Return(&models.Usuario{ID: "u1", Nombre: "Ana", Email: "ana@example.com"}, nil)

	mgr := NewManager(store, api, noopLogger())
	state := mgr.Restore(ctx)

	assert.Equal(t, Authenticated, state)
	assert.True(t, mgr.IsAuthenticated())
	user, ok := mgr.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ana", user.Nombre)
}

func TestManager_RestoreExpiredTokenPurges(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	require.NoError(t, store.Save(ctx, signedToken(t, -time.Hour), models.Usuario{ID: "u1"}))

	api := new(MockAuthAPI)
	mgr := NewManager(store, api, noopLogger())
	state := mgr.Restore(ctx)

	assert.Equal(t, Anonymous, state)
	assert.Nil(t, store.rec, "the persisted record must be purged")
	api.AssertNotCalled(t, "Profile", mock.Anything)
}

func TestManager_RestoreUndecodableTokenPurges(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	require.NoError(t, store.Save(ctx, "garbage", models.Usuario{ID: "u1"}))

	mgr := NewManager(store, new(MockAuthAPI), noopLogger())
	state := mgr.Restore(ctx)

	assert.Equal(t, Anonymous, state)
	assert.Nil(t, store.rec)
}

func TestManager_RestoreBackendRejectionPurges(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	require.NoError(t, store.Save(ctx, signedToken(t, time.Hour), models.Usuario{ID: "u1"}))

	api := new(MockAuthAPI)
	api.On("Profile", mock.Anything).Return(nil, &apierr.RequestError{Status: 401, Err: apierr.ErrSessionExpired})

	mgr := NewManager(store, api, noopLogger())
	state := mgr.Restore(ctx)

	assert.Equal(t, Anonymous, state)
	assert.Nil(t, store.rec)
	assert.False(t, mgr.IsAuthenticated())
}

func TestManager_LoginSuccessPersistsSession(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, models.LoginRequest{Email: "ana@example.com", Password: "secreta"}).
		Return(&auth.Credentials{Token: "tok-1", User: models.Usuario{ID: "u1", Nombre: "Ana"}}, nil)

	mgr := NewManager(store, api, noopLogger())
	require.NoError(t, mgr.Login(ctx, "ana@example.com", "secreta"))

	assert.Equal(t, Authenticated, mgr.State())
	assert.True(t, mgr.IsAuthenticated())
	require.NotNil(t, store.rec)
	assert.Equal(t, "tok-1", store.rec.Token)
}

func TestManager_LoginInvalidInputNeverReachesNetwork(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "bad email", email: "no-es-email", password: "secreta"},
		{name: "short password", email: "ana@example.com", password: "abc"},
		{name: "empty fields", email: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAuthAPI)
			mgr := NewManager(&memStore{}, api, noopLogger())

			err := mgr.Login(context.Background(), tt.email, tt.password)

			assert.True(t, apierr.IsValidation(err))
			api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
		})
	}
}

func TestManager_RegisterConfirmMismatch(t *testing.T) {
	api := new(MockAuthAPI)
	mgr := NewManager(&memStore{}, api, noopLogger())

	err := mgr.Register(context.Background(), "Ana", "ana@example.com", "secreta", "distinta")

	var ve *apierr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "las contraseñas no coinciden")
	api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestManager_LogoutPurgesEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, mock.Anything).
		Return(&auth.Credentials{Token: "tok-1", User: models.Usuario{ID: "u1", Nombre: "Ana"}}, nil)
	api.On("Logout", mock.Anything).Return(errors.New("backend down"))

	mgr := NewManager(store, api, noopLogger())
	require.NoError(t, mgr.Login(ctx, "ana@example.com", "secreta"))

	mgr.Logout(ctx)

	assert.Equal(t, Anonymous, mgr.State())
	assert.False(t, mgr.IsAuthenticated())
	assert.Nil(t, store.rec)
}

func TestManager_ForceAnonymous(t *testing.T) {
	ctx := context.Background()
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, mock.Anything).
		Return(&auth.Credentials{Token: "tok-1", User: models.Usuario{ID: "u1"}}, nil)

	mgr := NewManager(&memStore{}, api, noopLogger())
	require.NoError(t, mgr.Login(ctx, "ana@example.com", "secreta"))

	mgr.ForceAnonymous()

	assert.Equal(t, Anonymous, mgr.State())
	assert.False(t, mgr.IsAuthenticated())
}

func TestManager_SetCurrentUserPersists(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	api := new(MockAuthAPI)
	api.On("Login", mock.Anything, mock.Anything).
		Return(&auth.Credentials{Token: "tok-1", User: models.Usuario{ID: "u1", Nombre: "Ana"}}, nil)

	mgr := NewManager(store, api, noopLogger())
	require.NoError(t, mgr.Login(ctx, "ana@example.com", "secreta"))
	savesBefore := store.saves

	mgr.SetCurrentUser(ctx, models.Usuario{ID: "u1", Nombre: "Ana María"})

	user, ok := mgr.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ana María", user.Nombre)
	assert.Equal(t, savesBefore+1, store.saves)
	assert.Equal(t, "Ana María", store.rec.Usuario.Nombre)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "verifying", Verifying.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "anonymous", Anonymous.String())
}
