package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"servease/backend/internal/blocklist/domain"
)

// Repository defines persistence for the IP and email blocklists.
type Repository interface {
	IsIPBlacklisted(ctx context.Context, ip string) (bool, error)
	IsEmailBlocked(ctx context.Context, email string) (bool, error)
	AddIP(ctx context.Context, e *domain.BlacklistedIP) error
	AddEmail(ctx context.Context, e *domain.BlockedEmail) error
}

// PostgresRepository stores entries in blacklisted_ips and blocked_emails.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a blocklist repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// IsIPBlacklisted reports whether ip is listed. An empty ip is never listed.
func (r *PostgresRepository) IsIPBlacklisted(ctx context.Context, ip string) (bool, error) {
	if ip == "" {
		return false, nil
	}
	var listed bool
	err := r.db.GetContext(ctx, &listed, `SELECT EXISTS (SELECT 1 FROM blacklisted_ips WHERE ip_address = $1)`, ip)
	return listed, err
}

// IsEmailBlocked reports whether email is listed. Emails are stored lower-cased.
func (r *PostgresRepository) IsEmailBlocked(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var listed bool
	err := r.db.GetContext(ctx, &listed, `SELECT EXISTS (SELECT 1 FROM blocked_emails WHERE email = $1)`, email)
	return listed, err
}

// AddIP inserts e; a duplicate address is a unique violation.
func (r *PostgresRepository) AddIP(ctx context.Context, e *domain.BlacklistedIP) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blacklisted_ips (id, ip_address, reason, created_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.IPAddress, nullString(e.Reason), e.CreatedAt)
	return err
}

// AddEmail inserts e; a duplicate email is a unique violation.
func (r *PostgresRepository) AddEmail(ctx context.Context, e *domain.BlockedEmail) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocked_emails (id, email, reason, created_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Email, nullString(e.Reason), e.CreatedAt)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
