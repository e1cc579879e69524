package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"servease/backend/internal/kyc/domain"
)

const kycColumns = `k.id, k.user_id, u.email AS user_email, k.document_type, k.document_url, k.status,
	k.reviewed_by, k.review_notes, k.created_at, k.updated_at`

type kycRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	UserEmail    sql.NullString `db:"user_email"`
	DocumentType string         `db:"document_type"`
	DocumentURL  string         `db:"document_url"`
	Status       string         `db:"status"`
	ReviewedBy   sql.NullString `db:"reviewed_by"`
	ReviewNotes  sql.NullString `db:"review_notes"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// PostgresRepository stores submissions in the kycs table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a KYC repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists k. The caller sets ID, status and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, k *domain.KYC) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kycs (id, user_id, document_type, document_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		k.ID, k.UserID, k.DocumentType, k.DocumentURL, string(k.Status), k.CreatedAt, k.UpdatedAt)
	return err
}

// ListByUser returns the user's submissions newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.KYC, error) {
	return r.list(ctx, `SELECT `+kycColumns+` FROM kycs k JOIN users u ON u.id = k.user_id
		WHERE k.user_id = $1 ORDER BY k.created_at DESC`, userID)
}

// ListAll returns every submission newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*domain.KYC, error) {
	return r.list(ctx, `SELECT `+kycColumns+` FROM kycs k JOIN users u ON u.id = k.user_id
		ORDER BY k.created_at DESC`)
}

// Review updates the submission and, on approval, activates its user.
func (r *PostgresRepository) Review(ctx context.Context, id string, status domain.Status, reviewerID, notes string) (*domain.KYC, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	var userID string
	err = tx.GetContext(ctx, &userID, `
		UPDATE kycs
		SET status = $2, reviewed_by = $3, review_notes = COALESCE($4, review_notes), updated_at = $5
		WHERE id = $1
		RETURNING user_id`,
		id, string(status), reviewerID, sql.NullString{String: notes, Valid: notes != ""}, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if status == domain.StatusApproved {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET account_status = 'ACTIVE', updated_at = $2 WHERE id = $1`, userID, now); err != nil {
			return nil, err
		}
	}
	var row kycRow
	if err := tx.GetContext(ctx, &row, `SELECT `+kycColumns+` FROM kycs k JOIN users u ON u.id = k.user_id WHERE k.id = $1`, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rowToDomain(&row), nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.KYC, error) {
	var rows []kycRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*domain.KYC, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

func rowToDomain(r *kycRow) *domain.KYC {
	return &domain.KYC{
		ID:           r.ID,
		UserID:       r.UserID,
		UserEmail:    r.UserEmail.String,
		DocumentType: r.DocumentType,
		DocumentURL:  r.DocumentURL,
		Status:       domain.Status(r.Status),
		ReviewedBy:   r.ReviewedBy.String,
		ReviewNotes:  r.ReviewNotes.String,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
