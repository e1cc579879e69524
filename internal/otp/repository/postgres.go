package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"servease/backend/internal/otp/domain"
)

type otpRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CodeHash  string    `db:"code_hash"`
	Type      string    `db:"type"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

// PostgresRepository stores OTP records in the otps table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an OTP repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts o. ID and CreatedAt must be set by the caller.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.OTP) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO otps (id, user_id, code_hash, type, expires_at, used, created_at)
		VALUES (:id, :user_id, :code_hash, :type, :expires_at, :used, :created_at)`,
		otpRow{
			ID:        o.ID,
			UserID:    o.UserID,
			CodeHash:  o.CodeHash,
			Type:      string(o.Purpose),
			ExpiresAt: o.ExpiresAt,
			Used:      o.Used,
			CreatedAt: o.CreatedAt,
		})
	return err
}

// FindLatestUnused returns the newest unused record matching the code hash, or nil if none.
// Expiry is left to the caller so an expired match is distinguishable in tests.
func (r *PostgresRepository) FindLatestUnused(ctx context.Context, userID, codeHash string, purpose domain.Purpose) (*domain.OTP, error) {
	var row otpRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, code_hash, type, expires_at, used, created_at
		FROM otps
		WHERE user_id = $1 AND code_hash = $2 AND type = $3 AND used = FALSE
		ORDER BY created_at DESC
		LIMIT 1`, userID, codeHash, string(purpose))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.OTP{
		ID:        row.ID,
		UserID:    row.UserID,
		CodeHash:  row.CodeHash,
		Purpose:   domain.Purpose(row.Type),
		ExpiresAt: row.ExpiresAt,
		Used:      row.Used,
		CreatedAt: row.CreatedAt,
	}, nil
}

// MarkUsed flips used to true only if it is still false, so concurrent verifications of one code
// cannot both succeed.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE otps SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
