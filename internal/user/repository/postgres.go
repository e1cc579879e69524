package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"servease/backend/internal/user/domain"
)

const userColumns = `id, email, name, password, account_type, account_status, role_id, tenant_id, city_id, created_at, updated_at`

type userRow struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	Name          sql.NullString `db:"name"`
	Password      string         `db:"password"`
	AccountType   string         `db:"account_type"`
	AccountStatus string         `db:"account_status"`
	RoleID        sql.NullString `db:"role_id"`
	TenantID      sql.NullString `db:"tenant_id"`
	CityID        sql.NullString `db:"city_id"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// PostgresRepository stores users in the users table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email, or nil if not found.
// Emails are stored lower-cased; callers normalize before lookup.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :name, :password, :account_type, :account_status, :role_id, :tenant_id, :city_id, :created_at, :updated_at)`,
		domainToRow(u))
	return err
}

// UpdateStatus sets account_status and bumps updated_at.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET account_status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns users newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset); err != nil {
		return nil, err
	}
	out := make([]*domain.User, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func domainToRow(u *domain.User) userRow {
	return userRow{
		ID:            u.ID,
		Email:         u.Email,
		Name:          nullString(u.Name),
		Password:      u.PasswordHash,
		AccountType:   string(u.AccountType),
		AccountStatus: string(u.AccountStatus),
		RoleID:        nullString(u.RoleID),
		TenantID:      nullString(u.TenantID),
		CityID:        nullString(u.CityID),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func rowToDomain(r *userRow) *domain.User {
	return &domain.User{
		ID:            r.ID,
		Email:         r.Email,
		Name:          r.Name.String,
		PasswordHash:  r.Password,
		AccountType:   domain.AccountType(r.AccountType),
		AccountStatus: domain.AccountStatus(r.AccountStatus),
		RoleID:        r.RoleID.String,
		TenantID:      r.TenantID.String,
		CityID:        r.CityID.String,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
