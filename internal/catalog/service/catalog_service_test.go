package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"servease/backend/internal/catalog/domain"
	userdomain "servease/backend/internal/user/domain"
)

type memUsers map[string]*userdomain.User

func (m memUsers) GetByID(_ context.Context, id string) (*userdomain.User, error) { return m[id], nil }

type memCatalog struct {
	categories []*domain.Category
	services   []*domain.Service
}

func (m *memCatalog) CreateCategory(_ context.Context, c *domain.Category) error {
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	m.categories = append(m.categories, c)
	return nil
}

func (m *memCatalog) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memCatalog) ListCategories(context.Context) ([]*domain.Category, error) { return m.categories, nil }

func (m *memCatalog) CreateService(_ context.Context, s *domain.Service) error {
	m.services = append(m.services, s)
	return nil
}

func (m *memCatalog) GetService(_ context.Context, id string) (*domain.Service, error) {
	for _, s := range m.services {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memCatalog) Browse(_ context.Context, f domain.Filter) ([]*domain.Service, error) {
	var out []*domain.Service
	for i := len(m.services) - 1; i >= 0; i-- {
		s := m.services[i]
		switch {
		case !s.IsActive:
		case f.Category != "" && !strings.EqualFold(s.CategoryName, f.Category):
		case f.MinPrice != nil && s.Price < *f.MinPrice:
		case f.MaxPrice != nil && s.Price > *f.MaxPrice:
		case f.CityID != "" && s.CityID != f.CityID:
		default:
			out = append(out, s)
		}
	}
	return out, nil
}

func newTestCatalog() (*CatalogService, *memCatalog) {
	users := memUsers{
		"prov": {ID: "prov", Email: "prov@x.com", AccountType: userdomain.AccountTypeProviderBusiness, CityID: "austin"},
		"cust": {ID: "cust", Email: "cust@x.com", AccountType: userdomain.AccountTypeCustomer},
	}
	repo := &memCatalog{}
	return NewCatalogService(repo, users), repo
}

func TestCreateCategory_Duplicate(t *testing.T) {
	svc, _ := newTestCatalog()
	if _, err := svc.CreateCategory(context.Background(), "Plumbing", ""); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateCategory(context.Background(), " Plumbing ", ""); !errors.Is(err, ErrCategoryExists) {
		t.Errorf("err = %v, want ErrCategoryExists", err)
	}
}

func TestCreateService(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()
	cat, _ := svc.CreateCategory(ctx, "Plumbing", "")

	s, err := svc.CreateService(ctx, "prov", NewService{Title: "Leak repair", CategoryID: cat.ID, Price: 80})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if s.CityID != "austin" {
		t.Errorf("CityID = %q, want inherited from provider", s.CityID)
	}
	if !s.IsActive || s.Images == nil {
		t.Errorf("service = %+v, want active with empty images", s)
	}

	testCases := []struct {
		name     string
		provider string
		category string
		price    float64
		want     error
	}{
		{"unknown provider", "ghost", cat.ID, 10, ErrProviderNotFound},
		{"customer", "cust", cat.ID, 10, ErrNotProvider},
		{"unknown category", "prov", "nope", 10, ErrCategoryNotFound},
		{"negative price", "prov", cat.ID, -1, ErrInvalidPrice},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateService(ctx, tc.provider, NewService{Title: "x", CategoryID: tc.category, Price: tc.price})
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBrowseAndGet(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()
	plumbing, _ := svc.CreateCategory(ctx, "Plumbing", "")
	cleaning, _ := svc.CreateCategory(ctx, "Cleaning", "")
	cheap, _ := svc.CreateService(ctx, "prov", NewService{Title: "Drain", CategoryID: plumbing.ID, Price: 20})
	_, _ = svc.CreateService(ctx, "prov", NewService{Title: "Deep clean", CategoryID: cleaning.ID, Price: 150})

	lo := 10.0
	hi := 50.0
	got, err := svc.Browse(ctx, domain.Filter{Category: " PLUMBING ", MinPrice: &lo, MaxPrice: &hi})
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if len(got) != 1 || got[0].ID != cheap.ID {
		t.Errorf("Browse = %v, want only the plumbing listing", got)
	}

	if _, err := svc.Get(ctx, cheap.ID); err != nil {
		t.Errorf("Get: %v", err)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("Get missing: err = %v, want ErrServiceNotFound", err)
	}
}
