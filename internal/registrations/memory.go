package registrations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gatsby-party/backend/internal/models"
)

// InMemory implements Store with a mutex-guarded map. Used by unit tests and
// for running the server without a database.
type InMemory struct {
	mu      sync.Mutex
	byToken map[string]models.Registration
}

// NewInMemory creates an empty in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{byToken: make(map[string]models.Registration)}
}

// GetAll returns all registrations ordered by created_at ascending.
func (s *InMemory) GetAll(ctx context.Context) ([]models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]models.Registration, 0, len(s.byToken))
	for _, reg := range s.byToken {
		list = append(list, copyRegistration(reg))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID.String() < list[j].ID.String()
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// GetByToken returns the registration for token, or ErrNotFound.
func (s *InMemory) GetByToken(ctx context.Context, token string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyRegistration(reg)
	return &out, nil
}

// Create inserts reg, or returns ErrConflict when the token already has a row.
func (s *InMemory) Create(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[reg.CookieID]; ok {
		return ErrConflict
	}
	now := time.Now()
	reg.ID = uuid.New()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	if reg.Drinks == nil {
		reg.Drinks = []string{}
	}
	s.byToken[reg.CookieID] = copyRegistration(*reg)
	return nil
}

// Update overwrites the mutable fields for the row keyed by token.
func (s *InMemory) Update(ctx context.Context, token string, fields UpdateFields) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	reg.Name = fields.Name
	reg.Drinks = fields.Drinks
	if reg.Drinks == nil {
		reg.Drinks = []string{}
	}
	reg.IndividualWishes = fields.Wishes
	reg.UpdatedAt = time.Now()
	s.byToken[token] = copyRegistration(reg)
	out := copyRegistration(reg)
	return &out, nil
}

// Delete removes the row keyed by token and reports whether one existed.
func (s *InMemory) Delete(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[token]; !ok {
		return false, nil
	}
	delete(s.byToken, token)
	return true, nil
}

func copyRegistration(reg models.Registration) models.Registration {
	out := reg
	out.Drinks = append([]string(nil), reg.Drinks...)
	if reg.IndividualWishes != nil {
		w := *reg.IndividualWishes
		out.IndividualWishes = &w
	}
	return out
}
