// Package transport is the single choke point for backend calls. It attaches
// the bearer token after a local validity check, intercepts 401 responses to
// purge the session and send the user back to the login entry point, and maps
// error statuses onto the shared taxonomy.
//
// Side effects on the persisted session are confined to this package and the
// session manager; domain services never touch the token.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/telecomplus/contratos/internal/apierr"
	"github.com/telecomplus/contratos/internal/config"
	"github.com/telecomplus/contratos/internal/lib/sl"
	"github.com/telecomplus/contratos/internal/lib/token"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/session"
)

// LoginRoute is the route where an invalidated session lands. A 401 received
// while already there purges the session but does not navigate again.
const LoginRoute = "/login"

// SessionStore is the slice of the session store the transport needs: read
// the credential before a request and purge it on invalidation.
type SessionStore interface {
	Load(ctx context.Context) (session.Record, bool, error)
	Clear(ctx context.Context) error
}

// Navigator abstracts the front-end routing the transport forces on session
// invalidation. The CLI registers a handler that drops to the login prompt.
type Navigator interface {
	CurrentRoute() string
	NavigateTo(route string)
}

// Client wraps all outbound requests to the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	nav        Navigator
	limiter    *rate.Limiter
	log        *slog.Logger
	now        func() time.Time
}

// New creates a Client from the API config. A zero rate limit disables
// client-side throttling.
func New(cfg config.API, store SessionStore, nav Navigator, log *slog.Logger) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		nav:        nav,
		limiter:    limiter,
		log:        log,
		now:        time.Now,
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*models.Envelope, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*models.Envelope, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*models.Envelope, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*models.Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*models.Envelope, error) {
	const op = "transport.do"
	log := c.log.With(slog.String("op", op), slog.String("method", method), slog.String("path", path))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bearer, err := c.bearerToken(ctx)
	if err != nil {
		log.Warn("session invalid before request", sl.Err(err))
		return nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(method, "error", time.Since(start))
		log.Error("request failed", sl.Err(err))
		return nil, &apierr.RequestError{Message: "error de conexión con el servidor", Err: err}
	}
	defer resp.Body.Close()
	observeRequest(method, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	env := c.decodeEnvelope(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateSession(ctx, log)
		return nil, &apierr.RequestError{
			Status:  resp.StatusCode,
			Message: env.ErrorText(),
			Err:     apierr.ErrSessionExpired,
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, mapStatus(resp.StatusCode, env)
	}

	log.Debug("request ok", slog.Int("status", resp.StatusCode))
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// bearerToken reads the persisted credential and checks it locally. An
// absent session sends the request unauthenticated. An undecodable or
// expired token invalidates the session before anything leaves the process.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	rec, found, err := c.store.Load(ctx)
	if err != nil {
		return "", &apierr.RequestError{Message: "no se pudo leer la sesión", Err: err}
	}
	if !found || rec.Token == "" {
		return "", nil
	}
	claims, err := token.Inspect(rec.Token)
	if err != nil || claims.ExpiredAt(c.now()) {
		c.invalidateSession(ctx, c.log)
		return "", apierr.ErrSessionExpired
	}
	return rec.Token, nil
}

// invalidateSession purges the persisted credential and forces navigation to
// the login entry point, unless the front-end is already there.
func (c *Client) invalidateSession(ctx context.Context, log *slog.Logger) {
	if err := c.store.Clear(ctx); err != nil {
		log.Warn("failed to clear session", sl.Err(err))
	}
	if !strings.HasPrefix(c.nav.CurrentRoute(), LoginRoute) {
		c.nav.NavigateTo(LoginRoute)
	}
}

func (c *Client) decodeEnvelope(r io.Reader) *models.Envelope {
	var env models.Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return &models.Envelope{}
	}
	return &env
}

func mapStatus(status int, env *models.Envelope) error {
	switch {
	case status == http.StatusNotFound:
		return &apierr.NotFoundError{Message: env.ErrorText()}
	case status == http.StatusConflict:
		msg := env.ErrorText()
		if msg == "" {
			msg = "el recurso ya existe"
		}
		return &apierr.ConflictError{Message: msg}
	case status < http.StatusInternalServerError && (len(env.Errors) > 0 || env.Message != ""):
		fields := make([]apierr.FieldError, 0, len(env.Errors))
		for _, fe := range env.Errors {
			fields = append(fields, apierr.FieldError{Field: fe.Field, Message: fe.Message})
		}
		return apierr.Validation(env.Message, fields...)
	default:
		return &apierr.RequestError{Status: status, Message: env.ErrorText()}
	}
}
