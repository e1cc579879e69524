package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"servease/backend/internal/payment/domain"
)

// Repository defines persistence for payments.
type Repository interface {
	// GetByBookingID returns the booking's payment with participants, or nil.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)
	// GetByID returns the payment with participants, or nil.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	// UpdateStatus sets status and, when non-empty, the processor ids.
	UpdateStatus(ctx context.Context, id string, status domain.Status, paymentIntentID, transactionID string) error
}

const paymentSelect = `SELECT p.id, p.booking_id, p.amount, p.currency, p.status, p.payment_intent_id,
	p.transaction_id, b.customer_id, b.provider_id, p.created_at, p.updated_at
	FROM payments p JOIN bookings b ON b.id = p.booking_id`

type paymentRow struct {
	ID              string         `db:"id"`
	BookingID       string         `db:"booking_id"`
	Amount          float64        `db:"amount"`
	Currency        string         `db:"currency"`
	Status          string         `db:"status"`
	PaymentIntentID sql.NullString `db:"payment_intent_id"`
	TransactionID   sql.NullString `db:"transaction_id"`
	CustomerID      string         `db:"customer_id"`
	ProviderID      string         `db:"provider_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// PostgresRepository stores payments in the payments table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a payment repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByBookingID returns the payment for bookingID, or nil.
func (r *PostgresRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	return r.getOne(ctx, paymentSelect+` WHERE p.booking_id = $1`, bookingID)
}

// GetByID returns the payment, or nil.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.getOne(ctx, paymentSelect+` WHERE p.id = $1`, id)
}

// UpdateStatus updates the payment; empty ids keep their stored values.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, paymentIntentID, transactionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $2,
			payment_intent_id = COALESCE($3, payment_intent_id),
			transaction_id = COALESCE($4, transaction_id),
			updated_at = $5
		WHERE id = $1`,
		id, string(status), nullString(paymentIntentID), nullString(transactionID), time.Now().UTC())
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query, id string) (*domain.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row paymentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Payment{
		ID:              row.ID,
		BookingID:       row.BookingID,
		Amount:          row.Amount,
		Currency:        row.Currency,
		Status:          domain.Status(row.Status),
		PaymentIntentID: row.PaymentIntentID.String,
		TransactionID:   row.TransactionID.String,
		CustomerID:      row.CustomerID,
		ProviderID:      row.ProviderID,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
