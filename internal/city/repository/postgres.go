package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"servease/backend/internal/city/domain"
)

const cityColumns = `id, name, region, created_at, updated_at`

type cityRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Region    sql.NullString `db:"region"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// PostgresRepository stores cities in the cities table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a city repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the city, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.City, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row cityRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+cityColumns+` FROM cities WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// List returns cities by name, optionally filtered by region.
func (r *PostgresRepository) List(ctx context.Context, region string) ([]*domain.City, error) {
	var rows []cityRow
	var err error
	if region == "" {
		err = r.db.SelectContext(ctx, &rows, `SELECT `+cityColumns+` FROM cities ORDER BY name`)
	} else {
		err = r.db.SelectContext(ctx, &rows, `SELECT `+cityColumns+` FROM cities WHERE region = $1 ORDER BY name`, region)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*domain.City, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

// Create persists c. The caller sets ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.City) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (`+cityColumns+`)
		VALUES (:id, :name, :region, :created_at, :updated_at)`,
		cityRow{
			ID:        c.ID,
			Name:      c.Name,
			Region:    sql.NullString{String: c.Region, Valid: c.Region != ""},
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	return err
}

func rowToDomain(r *cityRow) *domain.City {
	return &domain.City{
		ID:        r.ID,
		Name:      r.Name,
		Region:    r.Region.String,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
