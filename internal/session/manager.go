package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/lib/sl"
	"github.com/telecomplus/contratos/internal/lib/token"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/auth"
	"github.com/telecomplus/contratos/internal/services/validate"
)

// State is the session lifecycle state.
type State int

const (
	// Unknown is the initial state before Restore has run.
	Unknown State = iota
	// Verifying means a persisted token is being revalidated.
	Verifying
	// Authenticated means a valid token and user are held.
	Authenticated
	// Anonymous means no usable session exists.
	Anonymous
)

func (s State) String() string {
	switch s {
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// AuthAPI is the slice of the auth service the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*auth.Credentials, error)
	Register(ctx context.Context, req models.RegisterRequest) (*auth.Credentials, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.Usuario, error)
}

// Manager owns the authentication token and the current-user record, and
// derives the authenticated state from them. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	store    Store
	api      AuthAPI
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time

	state State
	user  *models.Usuario
	token string
}

// NewManager creates a Manager in the Unknown state.
func NewManager(store Store, api AuthAPI, log *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		api:      api,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
		state:    Unknown,
	}
}

// Restore re-establishes the session at startup: absent record means
// Anonymous; an undecodable or locally expired token is purged; a locally
// valid one is revalidated against the backend profile endpoint.
func (m *Manager) Restore(ctx context.Context) State {
	const op = "session.Restore"
	log := m.log.With(slog.String("op", op))

	m.setState(Verifying, nil, "")

	rec, found, err := m.store.Load(ctx)
	if err != nil {
		log.Warn("failed to load persisted session", sl.Err(err))
		m.setState(Anonymous, nil, "")
		return Anonymous
	}
	if !found || rec.Token == "" {
		m.setState(Anonymous, nil, "")
		return Anonymous
	}

	claims, err := token.Inspect(rec.Token)
	if err != nil || claims.ExpiredAt(m.now()) {
		log.Info("persisted token invalid or expired, purging")
		m.purge(ctx)
		m.setState(Anonymous, nil, "")
		return Anonymous
	}

	user, err := m.api.Profile(ctx)
	if err != nil {
		log.Info("backend rejected persisted token, purging", sl.Err(err))
		m.purge(ctx)
		m.setState(Anonymous, nil, "")
		return Anonymous
	}

	m.setState(Authenticated, user, rec.Token)
	log.Info("session restored", slog.String("user", user.Nombre))
	return Authenticated
}

// Login exchanges credentials and persists the session. Failures leave the
// state unchanged and surface as AuthError.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	const op = "session.Login"
	req := models.LoginRequest{Email: email, Password: password}
	if err := validate.Struct(m.validate, req); err != nil {
		return err
	}

	creds, err := m.api.Login(ctx, req)
	if err != nil {
		return err
	}
	return m.establish(ctx, op, creds)
}

// Register validates the account fields and the password confirmation
// locally, then creates the account and persists the session. Local
// validation failures never issue a request.
func (m *Manager) Register(ctx context.Context, nombre, email, password, confirm string) error {
	const op = "session.Register"
	req := models.RegisterRequest{Nombre: nombre, Email: email, Password: password}
	if err := validate.Struct(m.validate, req); err != nil {
		return err
	}
	if password != confirm {
		return apierr.Validation("datos inválidos", apierr.FieldError{
			Field: "Password", Message: "las contraseñas no coinciden",
		})
	}

	creds, err := m.api.Register(ctx, req)
	if err != nil {
		return err
	}
	return m.establish(ctx, op, creds)
}

// Logout notifies the backend best-effort and always purges the local
// session, transitioning to Anonymous.
func (m *Manager) Logout(ctx context.Context) {
	const op = "session.Logout"
	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn("backend logout failed, continuing locally",
			slog.String("op", op), sl.Err(err))
	}
	m.purge(ctx)
	m.setState(Anonymous, nil, "")
}

// ForceAnonymous drops the in-memory session after an external invalidation
// signal (a 401 handled by the transport). The persisted record is already
// purged by then.
func (m *Manager) ForceAnonymous() {
	m.setState(Anonymous, nil, "")
}

// IsAuthenticated is strictly "user present AND token present", never
// inferred from any loading state.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.token != ""
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns a copy of the authenticated user, or false.
func (m *Manager) CurrentUser() (models.Usuario, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return models.Usuario{}, false
	}
	return *m.user, true
}

// SetCurrentUser replaces the in-memory user projection after a profile
// update and refreshes the persisted record.
func (m *Manager) SetCurrentUser(ctx context.Context, user models.Usuario) {
	m.mu.Lock()
	tok := m.token
	m.user = &user
	m.mu.Unlock()
	if tok != "" {
		if err := m.store.Save(ctx, tok, user); err != nil {
			m.log.Warn("failed to persist updated user", sl.Err(err))
		}
	}
}

func (m *Manager) establish(ctx context.Context, op string, creds *auth.Credentials) error {
	if err := m.store.Save(ctx, creds.Token, creds.User); err != nil {
		m.log.Warn("failed to persist session", slog.String("op", op), sl.Err(err))
	}
	user := creds.User
	m.setState(Authenticated, &user, creds.Token)
	m.log.Info("session established", slog.String("op", op), slog.String("user", user.Nombre))
	return nil
}

func (m *Manager) purge(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn("failed to clear persisted session", sl.Err(err))
	}
}

func (m *Manager) setState(s State, user *models.Usuario, tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.user = user
	m.token = tok
}
