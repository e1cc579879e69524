// Package handler serves the provider-facing /kyc routes.
package handler

import (
	"context"
	"errors"
	"net/http"

	"servease/backend/internal/kyc/domain"
	"servease/backend/internal/kyc/service"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
)

// KYCService is the subset of *service.KYCService used by the handler.
type KYCService interface {
	Submit(ctx context.Context, userID, documentType, documentURL string) (*domain.KYC, error)
	Status(ctx context.Context, userID string) ([]*domain.KYC, error)
}

type submitRequest struct {
	DocumentType string `json:"documentType" validate:"required"`
	DocumentURL  string `json:"documentUrl" validate:"required,url"`
}

// Handler serves KYC submission and status.
type Handler struct {
	kyc KYCService
}

// New returns a KYC Handler.
func New(kyc KYCService) *Handler {
	return &Handler{kyc: kyc}
}

// Submit handles POST /kyc/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	k, err := h.kyc.Submit(r.Context(), middleware.GetUserID(r.Context()), req.DocumentType, req.DocumentURL)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, k)
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrNotProvider):
		httpx.WriteError(w, http.StatusForbidden, "Only service providers can submit KYC")
	case errors.Is(err, service.ErrInvalidSubmission):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteInternal(w, r, err)
	}
}

// Status handles GET /kyc/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	list, err := h.kyc.Status(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.KYC{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
