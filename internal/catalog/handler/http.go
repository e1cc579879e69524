// Package handler serves the /services routes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"servease/backend/internal/catalog/domain"
	"servease/backend/internal/catalog/service"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
)

// CatalogService is the subset of *service.CatalogService used by the handler.
type CatalogService interface {
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	Categories(ctx context.Context) ([]*domain.Category, error)
	CreateService(ctx context.Context, providerID string, in service.NewService) (*domain.Service, error)
	Browse(ctx context.Context, f domain.Filter) ([]*domain.Service, error)
	Get(ctx context.Context, id string) (*domain.Service, error)
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type imageRequest struct {
	URL     string `json:"url" validate:"required,url"`
	Alt     string `json:"alt"`
	Order   int    `json:"order"`
	Caption string `json:"caption"`
}

type createServiceRequest struct {
	Title       string         `json:"title" validate:"required"`
	CategoryID  string         `json:"categoryId" validate:"required,uuid"`
	Price       *float64       `json:"price" validate:"required,gte=0"`
	Description string         `json:"description"`
	Images      []imageRequest `json:"images" validate:"omitempty,dive"`
}

// Handler serves the catalog.
type Handler struct {
	catalog CatalogService
}

// New returns a catalog Handler.
func New(catalog CatalogService) *Handler {
	return &Handler{catalog: catalog}
}

// CreateCategory handles POST /services/admin/service-categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// Categories handles GET /services/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.Categories(r.Context())
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Category{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Create handles POST /services.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := service.NewService{
		Title:       req.Title,
		CategoryID:  req.CategoryID,
		Price:       *req.Price,
		Description: req.Description,
	}
	for _, img := range req.Images {
		in.Images = append(in.Images, domain.Image(img))
	}
	s, err := h.catalog.CreateService(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, s)
}

// Browse handles GET /services?category=&minPrice=&maxPrice=&cityId=.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.Filter{
		Category: q.Get("category"),
		CityID:   strings.TrimSpace(q.Get("cityId")),
	}
	if f.CityID != "" {
		if _, err := uuid.Parse(f.CityID); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "cityId must be a UUID")
			return
		}
	}
	if v, ok := httpx.QueryFloat(r, "minPrice"); ok {
		f.MinPrice = &v
	}
	if v, ok := httpx.QueryFloat(r, "maxPrice"); ok {
		f.MaxPrice = &v
	}
	list, err := h.catalog.Browse(r.Context(), f)
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Service{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Get handles GET /services/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryExists):
		httpx.WriteError(w, http.StatusConflict, "Category with this name already exists")
	case errors.Is(err, service.ErrCategoryNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, service.ErrProviderNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Provider not found")
	case errors.Is(err, service.ErrServiceNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Service not found")
	case errors.Is(err, service.ErrNotProvider):
		httpx.WriteError(w, http.StatusForbidden, "Only service providers can create services")
	case errors.Is(err, service.ErrInvalidPrice):
		httpx.WriteError(w, http.StatusBadRequest, "price must not be less than 0")
	default:
		httpx.WriteInternal(w, r, err)
	}
}
