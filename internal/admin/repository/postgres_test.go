package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servease/backend/internal/admin/domain"
	"servease/backend/internal/db"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewPostgresRepository(db.Wrap(raw)), mock
}

func TestPostgresRepository_Metrics(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM users\) AS total_users`).
		WillReturnRows(sqlmock.NewRows([]string{"total_users", "active_users", "pending_kyc", "service_providers", "bookings", "tenants"}).
			AddRow(10, 7, 2, 3, 15, 1))

	m, err := repo.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.Metrics{TotalUsers: 10, ActiveUsers: 7, PendingKYC: 2, ServiceProviders: 3, Bookings: 15, Tenants: 1}, m)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_MetricsError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT (.+) AS total_users`).WillReturnError(errors.New("boom"))

	m, err := repo.Metrics(context.Background())
	assert.Error(t, err)
	assert.Nil(t, m)
}
