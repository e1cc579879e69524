// Package handler serves the /payments routes.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"servease/backend/internal/payment/domain"
	"servease/backend/internal/payment/service"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
)

// PaymentService is the subset of *service.PaymentService used by the handler.
type PaymentService interface {
	ForBooking(ctx context.Context, userID, bookingID string) (*domain.Payment, error)
	CreateIntent(ctx context.Context, userID, bookingID string) (*domain.Intent, error)
	UpdateStatus(ctx context.Context, userID, paymentID string, status domain.Status, paymentIntentID, transactionID string) (*domain.Payment, error)
}

type updateStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=PENDING PROCESSING COMPLETED FAILED REFUNDED"`
	PaymentIntentID string `json:"paymentIntentId"`
	TransactionID   string `json:"transactionId"`
}

// Handler serves payment lookups and status changes.
type Handler struct {
	payments PaymentService
}

// New returns a payment Handler.
func New(payments PaymentService) *Handler {
	return &Handler{payments: payments}
}

// ForBooking handles GET /payments/booking/{bookingId}.
func (h *Handler) ForBooking(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.ForBooking(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "bookingId"))
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// CreateIntent handles POST /payments/booking/{bookingId}/intent.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.payments.CreateIntent(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "bookingId"))
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, intent)
}

// UpdateStatus handles PATCH /payments/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.payments.UpdateStatus(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"),
		domain.Status(req.Status), req.PaymentIntentID, req.TransactionID)
	if err != nil {
		writePaymentError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func writePaymentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Payment not found")
	case errors.Is(err, service.ErrInvalidStatus):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteInternal(w, r, err)
	}
}
