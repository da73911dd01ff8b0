// Package app wires the config, session store, transport, domain services
// and stores into the CLI front-end.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/telecomplus/contratos/internal/config"
	"github.com/telecomplus/contratos/internal/services/auth"
	"github.com/telecomplus/contratos/internal/services/catalog"
	"github.com/telecomplus/contratos/internal/services/contract"
	"github.com/telecomplus/contratos/internal/services/profile"
	"github.com/telecomplus/contratos/internal/session"
	"github.com/telecomplus/contratos/internal/store"
	"github.com/telecomplus/contratos/internal/transport"
)

// App holds the wired object graph. Stores are constructed once here and
// passed by reference; nothing in the process is a package-level singleton.
type App struct {
	cfg *config.Config
	log *slog.Logger
	nav *navigator

	sessions  *session.Manager
	contratos *store.ContractStore
	servicios *store.CatalogStore
	perfil    *profile.Service
}

// New builds the application graph from config.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	const op = "app.New"

	var sessionStore session.Store
	switch cfg.Session.Backend {
	case "redis":
		rs, err := session.NewRedisStore(ctx, cfg.RedisConnection, cfg.Session.TTL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sessionStore = rs
	default:
		fs, err := session.NewFileStore(cfg.Session.File, cfg.Session.TTL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sessionStore = fs
	}

	nav := newNavigator()
	client := transport.New(cfg.API, sessionStore, nav, log)

	authSvc := auth.New(client, log)
	contrSvc := contract.New(client, log)
	catSvc := catalog.New(client, log)
	profSvc := profile.New(client, log)

	mgr := session.NewManager(sessionStore, authSvc, log)
	nav.onLogin = mgr.ForceAnonymous

	return &App{
		cfg:       cfg,
		log:       log,
		nav:       nav,
		sessions:  mgr,
		contratos: store.NewContractStore(contrSvc, log),
		servicios: store.NewCatalogStore(catSvc, log),
		perfil:    profSvc,
	}, nil
}

// Sessions exposes the session manager.
func (a *App) Sessions() *session.Manager { return a.sessions }

// Contratos exposes the contract store.
func (a *App) Contratos() *store.ContractStore { return a.contratos }

// Servicios exposes the catalog store.
func (a *App) Servicios() *store.CatalogStore { return a.servicios }
