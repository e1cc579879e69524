// Package handler serves the /cities routes.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"servease/backend/internal/city/domain"
	"servease/backend/internal/server/httpx"
)

// CityRepo is the city persistence used by the handler.
type CityRepo interface {
	GetByID(ctx context.Context, id string) (*domain.City, error)
	List(ctx context.Context, region string) ([]*domain.City, error)
	Create(ctx context.Context, c *domain.City) error
}

type createCityRequest struct {
	Name   string `json:"name" validate:"required"`
	Region string `json:"region"`
}

// Handler serves city lookups and creation.
type Handler struct {
	repo CityRepo
}

// New returns a city Handler.
func New(repo CityRepo) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /cities, with an optional ?region= filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cities, err := h.repo.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("region")))
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cities)
}

// Get handles GET /cities/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	if c == nil {
		httpx.WriteError(w, http.StatusNotFound, "City not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// Create handles POST /cities.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCityRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now().UTC()
	c := &domain.City{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Region:    strings.TrimSpace(req.Region),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Create(r.Context(), c); err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}
