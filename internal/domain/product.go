package domain

import "time"

type Product struct {
	ID             string            `json:"id"`
	SKU            string            `json:"sku"`
	Slug           string            `json:"slug"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	CompareAtPrice *float64          `json:"compareAtPrice,omitempty"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand,omitempty"`
	Images         []string          `json:"images"`
	Stock          int               `json:"stock"`
	IsActive       bool              `json:"isActive"`
	IsFeatured     bool              `json:"isFeatured"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
