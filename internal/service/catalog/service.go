package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

// ErrInvalidInput marks business-rule violations on product data; nothing is
// written when it is returned.
var ErrInvalidInput = errors.New("invalid product input")

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	CompareAtPrice *float64          `json:"compareAtPrice,omitempty"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand,omitempty"`
	Images         []string          `json:"images"`
	Stock          int               `json:"stock"`
	SKU            string            `json:"sku"`
	IsActive       *bool             `json:"isActive,omitempty"`
	IsFeatured     *bool             `json:"isFeatured,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
}

type UpdateInput struct {
	Name           *string           `json:"name,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Price          *float64          `json:"price,omitempty"`
	CompareAtPrice *float64          `json:"compareAtPrice,omitempty"`
	Category       *string           `json:"category,omitempty"`
	Brand          *string           `json:"brand,omitempty"`
	Images         []string          `json:"images,omitempty"`
	Stock          *int              `json:"stock,omitempty"`
	IsActive       *bool             `json:"isActive,omitempty"`
	IsFeatured     *bool             `json:"isFeatured,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	p := domain.Product{
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		Category:       strings.TrimSpace(in.Category),
		Brand:          strings.TrimSpace(in.Brand),
		Images:         trimmed(in.Images),
		Stock:          in.Stock,
		SKU:            strings.ToUpper(strings.TrimSpace(in.SKU)),
		IsActive:       true,
		IsFeatured:     false,
		Specifications: in.Specifications,
		Tags:           in.Tags,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	p.Slug = Slugify(p.Name)

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
		p.Slug = Slugify(p.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CompareAtPrice != nil {
		p.CompareAtPrice = in.CompareAtPrice
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Images != nil {
		p.Images = trimmed(in.Images)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Specifications != nil {
		p.Specifications = in.Specifications
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}

	if err := validateProduct(*p); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, *p)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug serves the storefront detail page; deactivated products are not
// visible there.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: invalid slug", ErrInvalidInput)
	}
	return s.repo.GetBySlug(ctx, slug, true)
}

func (s *Service) List(ctx context.Context, f productrepo.Filter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	return s.repo.AdjustStock(ctx, id, delta)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	return s.repo.SetActive(ctx, id, active)
}

func validateProduct(p domain.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	case p.Description == "":
		return fmt.Errorf("%w: description required", ErrInvalidInput)
	case p.Category == "":
		return fmt.Errorf("%w: category required", ErrInvalidInput)
	case p.SKU == "":
		return fmt.Errorf("%w: sku required", ErrInvalidInput)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	case len(p.Images) == 0:
		return fmt.Errorf("%w: at least one image required", ErrInvalidInput)
	}
	if p.CompareAtPrice != nil && *p.CompareAtPrice <= p.Price {
		return fmt.Errorf("%w: compare at price must be greater than the selling price", ErrInvalidInput)
	}
	return nil
}

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugStrip      = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s_]+`)
	slugCollapsed  = regexp.MustCompile(`-+`)
)

// Slugify derives the URL-friendly product slug from its name. Underscores
// become hyphens so every derived slug satisfies slugPattern and stays
// resolvable through GetBySlug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	slug = slugCollapsed.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func trimmed(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
