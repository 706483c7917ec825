package registrations

import (
	"context"

	"github.com/gatsby-party/backend/internal/models"
)

// UpdateFields is the mutable portion of a registration. A nil Wishes clears
// individual_wishes.
type UpdateFields struct {
	Name   string
	Drinks []string
	Wishes *string
}

// Store is durable CRUD over registrations, keyed by the visitor's identity
// token (cookie_id). Implementations must guarantee at most one row per token.
type Store interface {
	// GetAll returns every registration ordered by created_at ascending.
	GetAll(ctx context.Context) ([]models.Registration, error)
	// GetByToken returns the registration for token, or ErrNotFound. A store
	// holding more than one row for token returns ErrIntegrity.
	GetByToken(ctx context.Context, token string) (*models.Registration, error)
	// Create inserts reg, filling ID/CreatedAt/UpdatedAt. Returns ErrConflict
	// when a row for reg.CookieID already exists.
	Create(ctx context.Context, reg *models.Registration) error
	// Update overwrites name, drinks and wishes for the row keyed by token and
	// refreshes updated_at. Returns ErrNotFound when no row exists; never
	// creates one.
	Update(ctx context.Context, token string, fields UpdateFields) (*models.Registration, error)
	// Delete removes the row keyed by token. Returns false when nothing was
	// deleted; that is not an error.
	Delete(ctx context.Context, token string) (bool, error)
}
