package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"servease/backend/internal/catalog/domain"
)

const serviceSelect = `SELECT s.id, s.title, s.category_id, c.name AS category_name, s.provider_id,
	u.email AS provider_email, s.price, s.description, s.images, s.city_id, s.is_active, s.created_at, s.updated_at
	FROM services s
	LEFT JOIN service_categories c ON c.id = s.category_id
	LEFT JOIN users u ON u.id = s.provider_id`

type categoryRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

type serviceRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	CategoryID    string         `db:"category_id"`
	CategoryName  sql.NullString `db:"category_name"`
	ProviderID    string         `db:"provider_id"`
	ProviderEmail sql.NullString `db:"provider_email"`
	Price         float64        `db:"price"`
	Description   sql.NullString `db:"description"`
	Images        []byte         `db:"images"`
	CityID        sql.NullString `db:"city_id"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// PostgresRepository stores the catalog in service_categories and services.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a catalog repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateCategory persists c; a duplicate name is a unique violation.
func (r *PostgresRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO service_categories (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, nullString(c.Description), c.CreatedAt)
	return err
}

// GetCategory returns the category, or nil if not found.
func (r *PostgresRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row categoryRow
	if err := r.db.GetContext(ctx, &row,
		`SELECT id, name, description, created_at FROM service_categories WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return categoryFromRow(&row), nil
}

// ListCategories returns every category by name.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, description, created_at FROM service_categories ORDER BY name`); err != nil {
		return nil, err
	}
	out := make([]*domain.Category, len(rows))
	for i := range rows {
		out[i] = categoryFromRow(&rows[i])
	}
	return out, nil
}

// CreateService persists s with its images as JSONB.
func (r *PostgresRepository) CreateService(ctx context.Context, s *domain.Service) error {
	images, err := json.Marshal(imagesOrEmpty(s.Images))
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO services (id, title, category_id, provider_id, price, description, images, city_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Title, s.CategoryID, s.ProviderID, s.Price, nullString(s.Description), images,
		nullString(s.CityID), s.IsActive, s.CreatedAt, s.UpdatedAt)
	return err
}

// GetService returns the service, or nil if not found.
func (r *PostgresRepository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row serviceRow
	if err := r.db.GetContext(ctx, &row, serviceSelect+` WHERE s.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return serviceFromRow(&row)
}

// Browse returns active services matching f, newest first.
func (r *PostgresRepository) Browse(ctx context.Context, f domain.Filter) ([]*domain.Service, error) {
	conds := []string{"s.is_active = TRUE"}
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("LOWER(c.name) = LOWER($%d)", f.Category)
	}
	if f.MinPrice != nil {
		add("s.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("s.price <= $%d", *f.MaxPrice)
	}
	if f.CityID != "" {
		add("s.city_id = $%d", f.CityID)
	}
	query := serviceSelect + ` WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY s.created_at DESC`

	var rows []serviceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*domain.Service, 0, len(rows))
	for i := range rows {
		s, err := serviceFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func imagesOrEmpty(images []domain.Image) []domain.Image {
	if images == nil {
		return []domain.Image{}
	}
	return images
}

func categoryFromRow(r *categoryRow) *domain.Category {
	return &domain.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt,
	}
}

func serviceFromRow(r *serviceRow) (*domain.Service, error) {
	images := []domain.Image{}
	if len(r.Images) > 0 {
		if err := json.Unmarshal(r.Images, &images); err != nil {
			return nil, fmt.Errorf("decode images for service %s: %w", r.ID, err)
		}
	}
	return &domain.Service{
		ID:            r.ID,
		Title:         r.Title,
		CategoryID:    r.CategoryID,
		CategoryName:  r.CategoryName.String,
		ProviderID:    r.ProviderID,
		ProviderEmail: r.ProviderEmail.String,
		Price:         r.Price,
		Description:   r.Description.String,
		Images:        images,
		CityID:        r.CityID.String,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}
