package audit

import (
	"context"
	"errors"
	"testing"

	"servease/backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) List(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return m.entries, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, func(context.Context) string { return "192.168.1.1" })

	logger.LogEvent(context.Background(), "tenant-1", "user-1", "signin", "session", "a@x.com")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.TenantID != "tenant-1" || e.UserID != "user-1" {
		t.Errorf("tenant/user = %q/%q", e.TenantID, e.UserID)
	}
	if e.Action != "signin" || e.Resource != "session" {
		t.Errorf("action/resource = %q/%q", e.Action, e.Resource)
	}
	if e.IP != "192.168.1.1" {
		t.Errorf("ip = %q", e.IP)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be set")
	}
}

func TestLogger_LogEvent_Defaults(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil).LogEvent(context.Background(), "", "", "login_failure", "session", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].TenantID != SentinelTenantID {
		t.Errorf("tenant = %q, want %q", repo.entries[0].TenantID, SentinelTenantID)
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogger_LogEvent_RepoErrorIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	NewLogger(repo, nil).LogEvent(context.Background(), "t", "u", "a", "r", "")
	if len(repo.entries) != 0 {
		t.Error("no entry should be recorded on error")
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), "t", "u", "a", "r", "")
	NewLogger(nil, nil).LogEvent(context.Background(), "t", "u", "a", "r", "")
}
