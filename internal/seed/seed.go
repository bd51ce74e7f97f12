package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU         string
	Slug        string
	Name        string
	Description string
	Price       float64
	Category    string
	Brand       string
	Images      []string
	Stock       int
	Featured    bool
	Tags        []string
}

// Apply inserts demo catalog data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:         "TSHIRT-CLASSIC-01",
			Slug:        "classic-cotton-t-shirt",
			Name:        "Classic Cotton T-Shirt",
			Description: "Soft 100% cotton tee with a relaxed fit",
			Price:       19.99,
			Category:    "apparel",
			Brand:       "Northline",
			Images:      []string{"/images/tshirt-classic.jpg"},
			Stock:       120,
			Featured:    true,
			Tags:        []string{"cotton", "basics"},
		},
		{
			SKU:         "MUG-CERAMIC-01",
			Slug:        "ceramic-coffee-mug",
			Name:        "Ceramic Coffee Mug",
			Description: "12oz ceramic mug, dishwasher safe",
			Price:       12.99,
			Category:    "kitchen",
			Brand:       "Hearthware",
			Images:      []string{"/images/mug-ceramic.jpg"},
			Stock:       80,
			Tags:        []string{"kitchen", "gifts"},
		},
		{
			SKU:         "HDPH-WIRELESS-01",
			Slug:        "wireless-over-ear-headphones",
			Name:        "Wireless Over-Ear Headphones",
			Description: "Bluetooth 5.3 headphones with 40h battery life",
			Price:       89.50,
			Category:    "electronics",
			Brand:       "Soundfield",
			Images:      []string{"/images/headphones-wireless.jpg"},
			Stock:       35,
			Featured:    true,
			Tags:        []string{"audio", "wireless"},
		},
		{
			SKU:         "NTBK-DOTTED-01",
			Slug:        "dotted-hardcover-notebook",
			Name:        "Dotted Hardcover Notebook",
			Description: "A5 notebook with 180 dotted pages",
			Price:       9.75,
			Category:    "stationery",
			Brand:       "Inkwell",
			Images:      []string{"/images/notebook-dotted.jpg"},
			Stock:       200,
			Tags:        []string{"paper", "office"},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, slug, name, description, price, category, brand, images, stock, is_featured, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (sku) DO UPDATE
SET slug = EXCLUDED.slug,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    category = EXCLUDED.category,
    brand = EXCLUDED.brand,
    images = EXCLUDED.images,
    stock = EXCLUDED.stock,
    is_featured = EXCLUDED.is_featured,
    tags = EXCLUDED.tags,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Slug, p.Name, p.Description, p.Price, p.Category, p.Brand, p.Images, p.Stock, p.Featured, p.Tags)
	if err != nil {
		return err
	}
	return nil
}
