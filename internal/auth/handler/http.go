// Package handler exposes the auth service over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"servease/backend/internal/auth/service"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
	userdomain "servease/backend/internal/user/domain"
)

// AuthService is the subset of *service.AuthService used by the handler.
type AuthService interface {
	Signup(ctx context.Context, email, password string, accountType userdomain.AccountType, tenantID string) error
	VerifySignupOTP(ctx context.Context, email, code string) error
	Signin(ctx context.Context, email, password string) error
	VerifySigninOTP(ctx context.Context, email, code string) (*service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	Logout(ctx context.Context, userID, refreshToken string) error
}

const msgOTPSent = "OTP sent to your email"

type signupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	AccountType string `json:"accountType" validate:"required,oneof=customer service-provider-independent service-provider-business"`
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Handler serves /auth routes.
type Handler struct {
	auth AuthService
}

// New returns an auth Handler.
func New(auth AuthService) *Handler {
	return &Handler{auth: auth}
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	tenantID := middleware.GetTenantID(r.Context())
	if err := h.auth.Signup(r.Context(), req.Email, req.Password, userdomain.AccountType(req.AccountType), tenantID); err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusCreated, msgOTPSent)
}

// VerifySignupOTP handles POST /auth/signup/verify-otp.
func (h *Handler) VerifySignupOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.VerifySignupOTP(r.Context(), req.Email, req.OTP); err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Account verified successfully")
}

// Signin handles POST /auth/signin.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.Signin(r.Context(), req.Email, req.Password); err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, msgOTPSent)
}

// VerifySigninOTP handles POST /auth/signin/verify-otp.
func (h *Handler) VerifySigninOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	pair, err := h.auth.VerifySigninOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeOptional(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// Logout handles POST /auth/logout. Requires Authenticate.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req refreshRequest
	if err := httpx.DecodeOptional(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.auth.Logout(r.Context(), id.UserID, req.RefreshToken); err != nil {
		writeAuthError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// Profile handles GET /auth/profile. Requires Authenticate.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, id)
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		httpx.WriteError(w, http.StatusConflict, "User with this email already exists")
	case errors.Is(err, service.ErrAccountTypeNotAllowed),
		errors.Is(err, service.ErrPasswordTooShort):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMissingRefreshToken):
		httpx.WriteError(w, http.StatusBadRequest, "Refresh token is required")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidOTP):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired OTP")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
	default:
		httpx.WriteInternal(w, r, err)
	}
}
