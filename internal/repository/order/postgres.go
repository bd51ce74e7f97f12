package order

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

const orderColumns = `
id::text, order_number, customer_id::text, customer_email, subtotal, tax,
shipping_cost, total_amount, status, payment_status, COALESCE(payment_method, ''),
shipping_address, COALESCE(checkout_session_id, ''), COALESCE(notes, ''),
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

// Create persists the order and its line items in one transaction. Unique
// indexes on order_number and checkout_session_id back the idempotency and
// order-number guarantees; violations surface as domain.ErrConflict.
func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (order_number, customer_id, customer_email, subtotal, tax, shipping_cost, total_amount, status, payment_status, payment_method, shipping_address, checkout_session_id, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, NULLIF($12, ''), NULLIF($13, ''))
RETURNING id::text, created_at, updated_at`
	created := o
	err = tx.QueryRow(ctx, insertOrder,
		o.OrderNumber, o.CustomerID, strings.ToLower(o.CustomerEmail),
		o.Subtotal, o.Tax, o.ShippingCost, o.TotalAmount,
		string(o.Status), string(o.PaymentStatus), o.PaymentMethod,
		o.ShippingAddress, o.CheckoutSessionID, o.Notes,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Printf("order repo: create number=%s session=%s conflict", o.OrderNumber, o.CheckoutSessionID)
			return nil, domain.ErrConflict
		}
		r.logger.Printf("order repo: create number=%s error=%v", o.OrderNumber, err)
		return nil, err
	}
	created.CustomerEmail = strings.ToLower(o.CustomerEmail)

	const insertItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, line_total, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, item := range o.Items {
		if _, err := tx.Exec(ctx, insertItem,
			created.ID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.LineTotal, i,
		); err != nil {
			r.logger.Printf("order repo: insert item %d for order %s error=%v", i, created.ID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order %s id=%s items=%d", created.OrderNumber, created.ID, len(o.Items))
	return &created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id::text = $1`
	return r.fetchOrder(ctx, q, id)
}

// GetBySessionID is the idempotency lookup for webhook redeliveries.
func (r *postgresRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_session_id = $1`
	return r.fetchOrder(ctx, q, sessionID)
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.PaymentStatus != "" {
		args = append(args, string(f.PaymentStatus))
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if f.CustomerEmail != "" {
		args = append(args, strings.ToLower(f.CustomerEmail))
		conds = append(conds, fmt.Sprintf("customer_email = $%d", len(args)))
	}

	q := `SELECT ` + orderColumns + ` FROM orders`
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
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := r.fetchItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	q := `UPDATE orders SET status = $2, updated_at = now() WHERE id::text = $1 RETURNING ` + orderColumns
	return r.fetchOrder(ctx, q, id, string(status))
}

func (r *postgresRepo) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	q := `UPDATE orders SET payment_status = $2, updated_at = now() WHERE id::text = $1 RETURNING ` + orderColumns
	return r.fetchOrder(ctx, q, id, string(status))
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: fetch error=%v", err)
		return nil, err
	}
	items, err := r.fetchItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const q = `
SELECT product_id::text, product_name, quantity, unit_price, line_total
FROM order_items
WHERE order_id::text = $1
ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status, paymentStatus string
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerEmail,
		&o.Subtotal, &o.Tax, &o.ShippingCost, &o.TotalAmount,
		&status, &paymentStatus, &o.PaymentMethod,
		&o.ShippingAddress, &o.CheckoutSessionID, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return &o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
