package registrations

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gatsby-party/backend/internal/models"
)

// Service enforces the one-registration-per-token invariant and input
// validation in front of the store. It is stateless between requests; all
// shared state lives in the store.
//
// The client decides whether to call Register or Amend based on a prior
// Lookup. That convention is inherited from the original API: Register is a
// plain create that surfaces ErrConflict on a duplicate token rather than
// upserting, so a race between two Registers for one token yields exactly one
// success.
type Service struct {
	store  Store
	cache  *ListCache
	logger *zap.Logger
}

// NewService creates a registration service. cache may be nil.
func NewService(store Store, cache *ListCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// Register creates the registration for token. Fails with a ValidationError
// on a missing token or name and with ErrConflict when the token already has
// a registration.
func (s *Service) Register(ctx context.Context, token, name string, drinks []string, wishes string) (*models.Registration, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &ValidationError{Field: "cookie_id"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name"}
	}
	reg := &models.Registration{
		Name:             name,
		Drinks:           normalizeDrinks(drinks),
		IndividualWishes: wishesOrNil(wishes),
		CookieID:         token,
	}
	if err := s.store.Create(ctx, reg); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("registered",
		zap.String("cookie_id", token),
		zap.Int("drinks", len(reg.Drinks)),
	)
	return reg, nil
}

// Amend updates the existing registration for token. Fails with ErrNotFound
// when the token has no registration; never creates one. An empty wishes
// string clears individual_wishes.
func (s *Service) Amend(ctx context.Context, token, name string, drinks []string, wishes string) (*models.Registration, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &ValidationError{Field: "cookie_id"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name"}
	}
	reg, err := s.store.Update(ctx, token, UpdateFields{
		Name:   name,
		Drinks: normalizeDrinks(drinks),
		Wishes: wishesOrNil(wishes),
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("amended", zap.String("cookie_id", token))
	return reg, nil
}

// Withdraw deletes the registration for token. Returns ErrNotFound when
// there was nothing to delete, so a retried successful withdraw is
// distinguishable from a transient failure. The caller is responsible for
// discarding the client-side token on success.
func (s *Service) Withdraw(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return &ValidationError{Field: "cookie_id"}
	}
	deleted, err := s.store.Delete(ctx, token)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("withdrawn", zap.String("cookie_id", token))
	return nil
}

// Lookup returns the registration for token, or ErrNotFound.
func (s *Service) Lookup(ctx context.Context, token string) (*models.Registration, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &ValidationError{Field: "cookie_id"}
	}
	return s.store.GetByToken(ctx, token)
}

// List returns all registrations in chronological order for the aggregate
// view, serving from the cache when it is warm.
func (s *Service) List(ctx context.Context) ([]models.Registration, error) {
	if cached := s.cache.Get(ctx); cached != nil {
		return cached, nil
	}
	list, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, list)
	return list, nil
}

// normalizeDrinks drops duplicate labels, keeping first-appearance order.
// Labels themselves stay opaque.
func normalizeDrinks(drinks []string) []string {
	out := make([]string, 0, len(drinks))
	seen := make(map[string]bool, len(drinks))
	for _, d := range drinks {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

func wishesOrNil(wishes string) *string {
	if wishes == "" {
		return nil
	}
	return &wishes
}
