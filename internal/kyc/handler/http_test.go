package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servease/backend/internal/kyc/domain"
	"servease/backend/internal/kyc/service"
	"servease/backend/internal/server/middleware"
)

type fakeKYC struct {
	submitErr error
	gotUser   string
	list      []*domain.KYC
}

func (f *fakeKYC) Submit(_ context.Context, userID, documentType, documentURL string) (*domain.KYC, error) {
	f.gotUser = userID
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &domain.KYC{ID: "k1", UserID: userID, DocumentType: documentType, DocumentURL: documentURL, Status: domain.StatusPending}, nil
}

func (f *fakeKYC) Status(context.Context, string) ([]*domain.KYC, error) { return f.list, nil }

func authed(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), middleware.Identity{UserID: "prov-1"}))
}

func TestSubmit(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		err    error
		status int
		want   string
	}{
		{"created", `{"documentType":"government_id","documentUrl":"https://x.test/id.pdf"}`, nil, http.StatusCreated, `"status":"PENDING"`},
		{"invalid url", `{"documentType":"government_id","documentUrl":"invalid-url"}`, nil, http.StatusBadRequest, "documentUrl must be a valid URL"},
		{"not provider", `{"documentType":"id","documentUrl":"https://x.test/a"}`, service.ErrNotProvider, http.StatusForbidden, "Only service providers"},
		{"user gone", `{"documentType":"id","documentUrl":"https://x.test/a"}`, service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeKYC{submitErr: tc.err}
			rec := httptest.NewRecorder()
			New(fake).Submit(rec, authed(httptest.NewRequest(http.MethodPost, "/kyc/submit", strings.NewReader(tc.body))))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestSubmit_UsesCaller(t *testing.T) {
	fake := &fakeKYC{}
	rec := httptest.NewRecorder()
	New(fake).Submit(rec, authed(httptest.NewRequest(http.MethodPost, "/kyc/submit",
		strings.NewReader(`{"documentType":"id","documentUrl":"https://x.test/a"}`))))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "prov-1", fake.gotUser)
}

func TestStatus_EmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	New(&fakeKYC{}).Status(rec, authed(httptest.NewRequest(http.MethodGet, "/kyc/status", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
