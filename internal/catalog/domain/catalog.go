package domain

import "time"

// Category groups services, e.g. "Plumbing".
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Image is one picture attached to a service listing.
type Image struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Order   int    `json:"order,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Service is a provider's bookable offering.
type Service struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CategoryID    string    `json:"categoryId"`
	CategoryName  string    `json:"categoryName,omitempty"`
	ProviderID    string    `json:"providerId"`
	ProviderEmail string    `json:"providerEmail,omitempty"`
	Price         float64   `json:"price"`
	Description   string    `json:"description,omitempty"`
	Images        []Image   `json:"images"`
	CityID        string    `json:"cityId,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Filter narrows a browse. Zero fields do not filter.
type Filter struct {
	// Category matches the category name case-insensitively.
	Category string
	MinPrice *float64
	MaxPrice *float64
	CityID   string
}
