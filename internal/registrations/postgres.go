package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/gatsby-party/backend/internal/models"
)

// Postgres implements Store on a pgx pool. The registrations table carries a
// unique index on cookie_id, so concurrent Creates for one token resolve to
// exactly one inserted row and one conflict.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres creates a Postgres-backed registration store.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, logger: logger}
}

const registrationColumns = "id, name, drinks, individual_wishes, cookie_id, created_at, updated_at"

func scanRegistration(row pgx.Row, reg *models.Registration) error {
	return row.Scan(&reg.ID, &reg.Name, &reg.Drinks, &reg.IndividualWishes, &reg.CookieID, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetAll returns all registrations in chronological order.
func (s *Postgres) GetAll(ctx context.Context) ([]models.Registration, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+registrationColumns+` FROM registrations ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// GetByToken returns the registration for token. It scans every match rather
// than LIMIT 1 so a broken uniqueness invariant surfaces as ErrIntegrity
// instead of an arbitrary row.
func (s *Postgres) GetByToken(ctx context.Context, token string) (*models.Registration, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE cookie_id = $1`, token)
	if err != nil {
		return nil, fmt.Errorf("query registration: %w", err)
	}
	defer rows.Close()
	var found []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		found = append(found, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &found[0], nil
	default:
		s.logger.Error("cookie_id uniqueness violated",
			zap.String("cookie_id", token),
			zap.Int("rows", len(found)),
		)
		return nil, ErrIntegrity
	}
}

// Create inserts reg. The unique index on cookie_id raises SQLSTATE 23505 for
// a duplicate token, translated to ErrConflict.
func (s *Postgres) Create(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (id, name, drinks, individual_wishes, cookie_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	reg.ID = uuid.New()
	if reg.Drinks == nil {
		reg.Drinks = []string{}
	}
	err := s.pool.QueryRow(ctx, q, reg.ID, reg.Name, reg.Drinks, reg.IndividualWishes, reg.CookieID).
		Scan(&reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields for the row keyed by token.
func (s *Postgres) Update(ctx context.Context, token string, fields UpdateFields) (*models.Registration, error) {
	const q = `UPDATE registrations
		SET name = $1, drinks = $2, individual_wishes = $3, updated_at = NOW()
		WHERE cookie_id = $4
		RETURNING ` + registrationColumns
	drinks := fields.Drinks
	if drinks == nil {
		drinks = []string{}
	}
	var reg models.Registration
	err := scanRegistration(s.pool.QueryRow(ctx, q, fields.Name, drinks, fields.Wishes, token), &reg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update registration: %w", err)
	}
	return &reg, nil
}

// Delete removes the row keyed by token and reports whether one existed.
func (s *Postgres) Delete(ctx context.Context, token string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM registrations WHERE cookie_id = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
