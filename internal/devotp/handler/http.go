// Package handler serves GET /dev/otp. The route is only mounted when dev OTP mode is enabled.
package handler

import (
	"net/http"

	"servease/backend/internal/devotp"
	otpdomain "servease/backend/internal/otp/domain"
	"servease/backend/internal/server/httpx"
)

const devOTPNote = "DEV MODE ONLY"

type otpResponse struct {
	OTP  string `json:"otp"`
	Note string `json:"note"`
}

// Handler reads issued codes from the dev store.
type Handler struct {
	store devotp.Store
}

// New returns a dev OTP Handler backed by store.
func New(store devotp.Store) *Handler {
	return &Handler{store: store}
}

// GetOTP handles GET /dev/otp?email=&purpose=. purpose defaults to signin.
func (h *Handler) GetOTP(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	purpose := otpdomain.Purpose(r.URL.Query().Get("purpose"))
	if purpose == "" {
		purpose = otpdomain.PurposeSignin
	}
	if !purpose.Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "purpose must be one of: signup, signin")
		return
	}
	otp, ok := h.store.Get(r.Context(), email, string(purpose))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "OTP not found or expired")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, otpResponse{OTP: otp, Note: devOTPNote})
}
