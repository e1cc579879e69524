package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"servease/backend/internal/payment/domain"
	"servease/backend/internal/payment/service"
	"servease/backend/internal/server/middleware"
)

// fakePayments only lets "cust" see booking b1 and payment pay1.
type fakePayments struct{}

func (fakePayments) ForBooking(_ context.Context, userID, bookingID string) (*domain.Payment, error) {
	if userID != "cust" || bookingID != "b1" {
		return nil, service.ErrPaymentNotFound
	}
	return &domain.Payment{ID: "pay1", BookingID: "b1", Amount: 80, Currency: "USD", Status: domain.StatusPending}, nil
}

func (f fakePayments) CreateIntent(ctx context.Context, userID, bookingID string) (*domain.Intent, error) {
	p, err := f.ForBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	return &domain.Intent{Amount: p.Amount, Currency: p.Currency, BookingID: p.BookingID}, nil
}

func (fakePayments) UpdateStatus(_ context.Context, userID, paymentID string, status domain.Status, _, _ string) (*domain.Payment, error) {
	if userID != "cust" || paymentID != "pay1" {
		return nil, service.ErrPaymentNotFound
	}
	return &domain.Payment{ID: "pay1", Status: status}, nil
}

func newRouter(userID string) http.Handler {
	h := New(fakePayments{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: userID})))
		})
	})
	r.Get("/payments/booking/{bookingId}", h.ForBooking)
	r.Post("/payments/booking/{bookingId}/intent", h.CreateIntent)
	r.Patch("/payments/{id}/status", h.UpdateStatus)
	return r
}

func TestPaymentRoutes(t *testing.T) {
	testCases := []struct {
		name   string
		user   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"get", "cust", http.MethodGet, "/payments/booking/b1", "", http.StatusOK, `"amount":80`},
		{"get stranger", "other", http.MethodGet, "/payments/booking/b1", "", http.StatusNotFound, "Payment not found"},
		{"intent", "cust", http.MethodPost, "/payments/booking/b1/intent", "", http.StatusCreated, `"paymentIntentId":null`},
		{"update", "cust", http.MethodPatch, "/payments/pay1/status", `{"status":"COMPLETED"}`, http.StatusOK, `"status":"COMPLETED"`},
		{"update bad status", "cust", http.MethodPatch, "/payments/pay1/status", `{"status":"LOST"}`, http.StatusBadRequest, "status must be one of"},
		{"update stranger", "other", http.MethodPatch, "/payments/pay1/status", `{"status":"FAILED"}`, http.StatusNotFound, "Payment not found"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(tc.user).ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}
