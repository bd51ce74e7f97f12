package domain

import "time"

// OrderStatus is the fulfillment state machine; PaymentStatus is independent.
type OrderStatus string

type PaymentStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"

	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	CustomerID        *string         `json:"customerId,omitempty"`
	CustomerEmail     string          `json:"customerEmail"`
	Items             []OrderItem     `json:"items"`
	Subtotal          float64         `json:"subtotal"`
	Tax               float64         `json:"tax"`
	ShippingCost      float64         `json:"shippingCost"`
	TotalAmount       float64         `json:"totalAmount"`
	Status            OrderStatus     `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	PaymentMethod     string          `json:"paymentMethod,omitempty"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	CheckoutSessionID string          `json:"-"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"price"`
	LineTotal   float64 `json:"total"`
}

type ShippingAddress struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentUnpaid: {PaymentPaid},
	PaymentPaid:   {PaymentRefunded},
}

// CanTransition reports whether the fulfillment status may move from one state
// to another. Delivered and cancelled orders are terminal.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}
