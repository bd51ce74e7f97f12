package product

import (
	"context"

	"storefront/internal/domain"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Category     string
	ActiveOnly   bool
	FeaturedOnly bool
	NameQuery    string
	Limit        int
}

type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string, activeOnly bool) (*domain.Product, error)
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}
