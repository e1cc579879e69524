package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"servease/backend/internal/booking/domain"
	paymentdomain "servease/backend/internal/payment/domain"
)

// Repository defines persistence for bookings.
type Repository interface {
	// Create inserts the booking and its payment in one transaction.
	Create(ctx context.Context, b *domain.Booking, p *paymentdomain.Payment) error
	// GetByID returns the booking with its payment, or nil.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

const bookingSelect = `SELECT b.id, b.service_id, s.title AS service_title, b.customer_id, b.provider_id,
	b.schedule, b.address, b.city_id, b.status, b.created_at, b.updated_at,
	p.id AS pay_id, p.amount AS pay_amount, p.currency AS pay_currency, p.status AS pay_status,
	p.payment_intent_id AS pay_intent_id, p.transaction_id AS pay_transaction_id,
	p.created_at AS pay_created_at, p.updated_at AS pay_updated_at
	FROM bookings b
	LEFT JOIN services s ON s.id = b.service_id
	LEFT JOIN payments p ON p.booking_id = b.id`

type bookingRow struct {
	ID           string          `db:"id"`
	ServiceID    string          `db:"service_id"`
	ServiceTitle sql.NullString  `db:"service_title"`
	CustomerID   string          `db:"customer_id"`
	ProviderID   string          `db:"provider_id"`
	Schedule     time.Time       `db:"schedule"`
	Address      string          `db:"address"`
	CityID       sql.NullString  `db:"city_id"`
	Status       string          `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	PayID        sql.NullString  `db:"pay_id"`
	PayAmount    sql.NullFloat64 `db:"pay_amount"`
	PayCurrency  sql.NullString  `db:"pay_currency"`
	PayStatus    sql.NullString  `db:"pay_status"`
	PayIntentID  sql.NullString  `db:"pay_intent_id"`
	PayTxID      sql.NullString  `db:"pay_transaction_id"`
	PayCreatedAt sql.NullTime    `db:"pay_created_at"`
	PayUpdatedAt sql.NullTime    `db:"pay_updated_at"`
}

// PostgresRepository stores bookings in the bookings table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a booking repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts b and p atomically.
func (r *PostgresRepository) Create(ctx context.Context, b *domain.Booking, p *paymentdomain.Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (id, service_id, customer_id, provider_id, schedule, address, city_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.ServiceID, b.CustomerID, b.ProviderID, b.Schedule, b.Address,
		sql.NullString{String: b.CityID, Valid: b.CityID != ""}, string(b.Status), b.CreatedAt, b.UpdatedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, booking_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.BookingID, p.Amount, p.Currency, string(p.Status), p.CreatedAt, p.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns the booking, or nil.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, bookingSelect+` WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// ListByCustomer returns the customer's bookings newest first.
func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.customer_id = $1 ORDER BY b.created_at DESC`, customerID)
}

// ListByProvider returns the provider's bookings newest first.
func (r *PostgresRepository) ListByProvider(ctx context.Context, providerID string) ([]*domain.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.provider_id = $1 ORDER BY b.created_at DESC`, providerID)
}

// UpdateStatus sets the booking status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC())
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query, userID string) ([]*domain.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	out := make([]*domain.Booking, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

func rowToDomain(r *bookingRow) *domain.Booking {
	b := &domain.Booking{
		ID:           r.ID,
		ServiceID:    r.ServiceID,
		ServiceTitle: r.ServiceTitle.String,
		CustomerID:   r.CustomerID,
		ProviderID:   r.ProviderID,
		Schedule:     r.Schedule,
		Address:      r.Address,
		CityID:       r.CityID.String,
		Status:       domain.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.PayID.Valid {
		b.Payment = &paymentdomain.Payment{
			ID:              r.PayID.String,
			BookingID:       r.ID,
			Amount:          r.PayAmount.Float64,
			Currency:        r.PayCurrency.String,
			Status:          paymentdomain.Status(r.PayStatus.String),
			PaymentIntentID: r.PayIntentID.String,
			TransactionID:   r.PayTxID.String,
			CustomerID:      r.CustomerID,
			ProviderID:      r.ProviderID,
			CreatedAt:       r.PayCreatedAt.Time,
			UpdatedAt:       r.PayUpdatedAt.Time,
		}
	}
	return b
}
