package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servease/backend/internal/blocklist/domain"
	"servease/backend/internal/db"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewPostgresRepository(db.Wrap(raw)), mock
}

func TestPostgresRepository_Lookups(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM blacklisted_ips WHERE ip_address = \$1`).WithArgs("10.0.0.9").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`FROM blocked_emails WHERE email = \$1`).WithArgs("spam@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	listed, err := repo.IsIPBlacklisted(context.Background(), "10.0.0.9")
	require.NoError(t, err)
	assert.True(t, listed)

	blocked, err := repo.IsEmailBlocked(context.Background(), "spam@x.com")
	require.NoError(t, err)
	assert.False(t, blocked)

	listed, err = repo.IsIPBlacklisted(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, listed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Add(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO blacklisted_ips`).WithArgs("b1", "10.0.0.9", "abuse", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO blocked_emails`).WithArgs("b2", "spam@x.com", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddIP(context.Background(), &domain.BlacklistedIP{ID: "b1", IPAddress: "10.0.0.9", Reason: "abuse", CreatedAt: now}))
	require.NoError(t, repo.AddEmail(context.Background(), &domain.BlockedEmail{ID: "b2", Email: "spam@x.com", CreatedAt: now}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
