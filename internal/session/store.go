// Package session owns the persisted authentication credential and the
// current-user projection, and drives the login/register/logout lifecycle.
//
// The persisted record is the only resource shared across concurrently-open
// front-ends: any of them purging it (logout or a 401) invalidates the rest
// lazily, the next time they load it before a request.
package session

import (
	"context"
	"time"

	"github.com/telecomplus/contratos/internal/models"
)

// Record is the persisted session: the bearer token, the normalized user
// projection and the rolling client-side expiry. The 7-day window is
// independent of the token's own embedded expiry claim.
type Record struct {
	Token     string         `json:"token"`
	Usuario   models.Usuario `json:"usuario"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Expired reports whether the client-side rolling window has passed.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Store persists the session record across process restarts.
type Store interface {
	// Save writes the record, stamping the rolling expiry.
	Save(ctx context.Context, token string, user models.Usuario) error
	// Load returns the stored record, or found=false when absent or past
	// its rolling expiry.
	Load(ctx context.Context) (rec Record, found bool, err error)
	// Clear removes the stored record. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
