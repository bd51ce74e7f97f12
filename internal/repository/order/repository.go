package order

import (
	"context"

	"storefront/internal/domain"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	CustomerEmail string
	Limit         int
}

type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	List(ctx context.Context, f Filter) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error)
}
