// Package service implements the service catalog: categories, provider listings and browsing.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"servease/backend/internal/catalog/domain"
	"servease/backend/internal/db"
	userdomain "servease/backend/internal/user/domain"
)

var (
	ErrCategoryExists   = errors.New("category with this name already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProviderNotFound = errors.New("provider not found")
	ErrNotProvider      = errors.New("only service providers can create services")
	ErrServiceNotFound  = errors.New("service not found")
	ErrInvalidPrice     = errors.New("price must not be negative")
)

// Repo is the catalog persistence used by CatalogService.
type Repo interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateService(ctx context.Context, s *domain.Service) error
	GetService(ctx context.Context, id string) (*domain.Service, error)
	Browse(ctx context.Context, f domain.Filter) ([]*domain.Service, error)
}

// UserGetter loads the listing provider.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// NewService is the input for CreateService.
type NewService struct {
	Title       string
	CategoryID  string
	Price       float64
	Description string
	Images      []domain.Image
}

// CatalogService manages categories and listings.
type CatalogService struct {
	repo  Repo
	users UserGetter
	now   func() time.Time
}

// NewCatalogService returns a CatalogService.
func NewCatalogService(repo Repo, users UserGetter) *CatalogService {
	return &CatalogService{repo: repo, users: users, now: func() time.Time { return time.Now().UTC() }}
}

// CreateCategory adds a category. Names are unique.
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	c := &domain.Category{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return c, nil
}

// Categories lists every category.
func (s *CatalogService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateService lists a new active service for providerID. The city is inherited from the provider.
func (s *CatalogService) CreateService(ctx context.Context, providerID string, in NewService) (*domain.Service, error) {
	if in.Price < 0 {
		return nil, ErrInvalidPrice
	}
	provider, err := s.users.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}
	if !provider.AccountType.IsProvider() {
		return nil, ErrNotProvider
	}
	category, err := s.repo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	now := s.now()
	svc := &domain.Service{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(in.Title),
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		ProviderID:    provider.ID,
		ProviderEmail: provider.Email,
		Price:         in.Price,
		Description:   in.Description,
		Images:        in.Images,
		CityID:        provider.CityID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if svc.Images == nil {
		svc.Images = []domain.Image{}
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Browse lists active services matching f, newest first.
func (s *CatalogService) Browse(ctx context.Context, f domain.Filter) ([]*domain.Service, error) {
	f.Category = strings.TrimSpace(f.Category)
	return s.repo.Browse(ctx, f)
}

// Get returns one service.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}
