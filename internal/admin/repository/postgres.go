// Package repository reads the aggregate counters shown on the admin dashboard.
package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"servease/backend/internal/admin/domain"
)

const metricsQuery = `
	SELECT
		(SELECT COUNT(*) FROM users) AS total_users,
		(SELECT COUNT(*) FROM users WHERE account_status = 'ACTIVE') AS active_users,
		(SELECT COUNT(*) FROM kycs WHERE status = 'PENDING') AS pending_kyc,
		(SELECT COUNT(*) FROM users WHERE account_type IN ('service-provider-independent', 'service-provider-business')) AS service_providers,
		(SELECT COUNT(*) FROM bookings) AS bookings,
		(SELECT COUNT(*) FROM tenants) AS tenants`

// PostgresRepository computes dashboard metrics with one round trip.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a metrics repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Metrics returns the current dashboard counters.
func (r *PostgresRepository) Metrics(ctx context.Context) (*domain.Metrics, error) {
	var m domain.Metrics
	if err := r.db.GetContext(ctx, &m, metricsQuery); err != nil {
		return nil, err
	}
	return &m, nil
}
