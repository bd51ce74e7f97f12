package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

const productColumns = `
id::text, sku, slug, name, description, price, compare_at_price, category,
COALESCE(brand, ''), images, stock, is_active, is_featured, specifications, tags,
created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (sku, slug, name, description, price, compare_at_price, category, brand, images, stock, is_active, is_featured, specifications, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13, $14)
RETURNING ` + productColumns
	row := r.pool.QueryRow(ctx, q,
		p.SKU, p.Slug, p.Name, p.Description, p.Price, p.CompareAtPrice,
		p.Category, p.Brand, p.Images, p.Stock, p.IsActive, p.IsFeatured,
		p.Specifications, p.Tags,
	)
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Printf("product repo: create sku=%s slug=%s conflict", p.SKU, p.Slug)
			return nil, domain.ErrConflict
		}
		r.logger.Printf("product repo: create sku=%s error=%v", p.SKU, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s sku=%s", created.ID, created.SKU)
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string, activeOnly bool) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	if activeOnly {
		q += ` AND is_active`
	}
	p, err := scanProduct(r.pool.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get slug=%s error=%v", slug, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if f.FeaturedOnly {
		conds = append(conds, "is_featured")
	}
	if f.NameQuery != "" {
		args = append(args, "%"+f.NameQuery+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	q := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET sku = $2, slug = $3, name = $4, description = $5, price = $6,
    compare_at_price = $7, category = $8, brand = NULLIF($9, ''), images = $10,
    stock = $11, is_active = $12, is_featured = $13, specifications = $14,
    tags = $15, updated_at = now()
WHERE id::text = $1
RETURNING ` + productColumns
	row := r.pool.QueryRow(ctx, q,
		p.ID, p.SKU, p.Slug, p.Name, p.Description, p.Price, p.CompareAtPrice,
		p.Category, p.Brand, p.Images, p.Stock, p.IsActive, p.IsFeatured,
		p.Specifications, p.Tags,
	)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) (*domain.Product, error) {
	q := `UPDATE products SET is_active = $2, updated_at = now() WHERE id::text = $1 RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	r.logger.Printf("product repo: set id=%s active=%t", id, active)
	return p, nil
}

func (r *postgresRepo) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	q := `
UPDATE products
SET stock = GREATEST(stock + $2, 0), updated_at = now()
WHERE id::text = $1
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: adjust stock id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

// ExistingIDs reports which of the given product ids resolve to a catalog row.
// Inputs are matched as text so malformed ids simply come back missing.
func (r *postgresRepo) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	const q = `SELECT id::text FROM products WHERE id::text = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: existing ids error=%v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID, &p.SKU, &p.Slug, &p.Name, &p.Description, &p.Price,
		&p.CompareAtPrice, &p.Category, &p.Brand, &p.Images, &p.Stock,
		&p.IsActive, &p.IsFeatured, &p.Specifications, &p.Tags,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
