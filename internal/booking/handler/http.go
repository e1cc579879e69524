// Package handler serves the /bookings routes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"servease/backend/internal/booking/domain"
	"servease/backend/internal/booking/service"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
)

// BookingService is the subset of *service.BookingService used by the handler.
type BookingService interface {
	Create(ctx context.Context, customerID, serviceID string, schedule time.Time, address string) (*domain.Booking, error)
	List(ctx context.Context, userID string, typ service.ListType) ([]*domain.Booking, error)
	Get(ctx context.Context, userID, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, userID, id string, status domain.Status) (*domain.Booking, error)
}

type createBookingRequest struct {
	ServiceID string `json:"serviceId" validate:"required,uuid"`
	Schedule  string `json:"schedule" validate:"required"`
	Address   string `json:"address" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
}

// Handler serves bookings for the authenticated caller.
type Handler struct {
	bookings BookingService
}

// New returns a booking Handler.
func New(bookings BookingService) *Handler {
	return &Handler{bookings: bookings}
}

// Create handles POST /bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	schedule, err := time.Parse(time.RFC3339, req.Schedule)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "schedule must be an RFC 3339 date-time")
		return
	}
	b, err := h.bookings.Create(r.Context(), middleware.GetUserID(r.Context()), req.ServiceID, schedule, req.Address)
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

// List handles GET /bookings?type=customer|provider.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.bookings.List(r.Context(), middleware.GetUserID(r.Context()), service.ListType(r.URL.Query().Get("type")))
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Booking{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /bookings/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

// UpdateStatus handles PATCH /bookings/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.bookings.UpdateStatus(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), domain.Status(req.Status))
	if err != nil {
		writeBookingError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrServiceNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Service not found")
	case errors.Is(err, service.ErrBookingNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Booking not found")
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrAddressRequired):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteInternal(w, r, err)
	}
}
