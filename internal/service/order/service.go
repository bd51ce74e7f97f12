package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/payments"
	orderrepo "storefront/internal/repository/order"
)

// maxNumberAttempts bounds retries when a freshly generated order number
// collides with an existing one.
const maxNumberAttempts = 5

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.Filter) ([]domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error)
}

type productRepo interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

type sessionFetcher interface {
	GetSession(ctx context.Context, id string) (*payments.Session, error)
}

type Service struct {
	orders   orderRepo
	products productRepo
	payments sessionFetcher
	logger   *log.Logger
	now      func() time.Time
}

func New(orders orderrepo.Repository, products productRepo, paymentsClient sessionFetcher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:   orders,
		products: products,
		payments: paymentsClient,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleCompletedSession materializes exactly one order for a completed
// checkout session. Redelivered events find the existing order and return it
// unchanged; any other failure propagates so the processor retries delivery.
func (s *Service) HandleCompletedSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id required")
	}

	existing, err := s.orders.GetBySessionID(ctx, sessionID)
	if err == nil {
		s.logger.Printf("order service: order %s already exists for session %s", existing.OrderNumber, sessionID)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("idempotency check for session %s: %w", sessionID, err)
	}

	// Event payloads may be partial; the expanded session is authoritative.
	sess, err := s.payments.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve session %s: %w", sessionID, err)
	}

	order, err := s.buildOrder(sess)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	existingIDs, err := s.products.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("look up products for session %s: %w", sessionID, err)
	}
	if err := Validate(order, existingIDs); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order.OrderNumber = NewOrderNumber(s.now().UTC())
		created, err := s.orders.Create(ctx, *order)
		if err == nil {
			s.logger.Printf("order service: created order %s for session %s", created.OrderNumber, sessionID)
			return created, nil
		}
		if errors.Is(err, domain.ErrConflict) {
			// Either the order number collided or a concurrent delivery won
			// the session uniqueness race. Re-read before retrying the number.
			winner, getErr := s.orders.GetBySessionID(ctx, sessionID)
			if getErr == nil {
				return winner, nil
			}
			if !errors.Is(getErr, domain.ErrNotFound) {
				return nil, fmt.Errorf("resolve conflict for session %s: %w", sessionID, getErr)
			}
			continue
		}
		return nil, fmt.Errorf("create order for session %s: %w", sessionID, err)
	}
	return nil, fmt.Errorf("create order for session %s: exhausted order number attempts", sessionID)
}

func (s *Service) buildOrder(sess *payments.Session) (*domain.Order, error) {
	refs := parseItemRefs(sess.Metadata["itemIds"])
	if refs == nil {
		s.logger.Printf("order service: session %s has no usable itemIds metadata", sess.ID)
	}

	items := make([]domain.OrderItem, 0, len(sess.LineItems))
	for i, li := range sess.LineItems {
		productID := li.ProductMetadata["productId"]
		if productID == "" && i < len(refs) {
			productID = refs[i].ID
		}
		if productID == "" {
			return nil, fmt.Errorf("session %s: line item %d has no resolvable product id", sess.ID, i)
		}

		qty := int(li.Quantity)
		if qty < 1 {
			qty = 1
		}
		name := li.ProductName
		if name == "" {
			name = li.Description
		}
		if name == "" {
			name = "Unknown Product"
		}
		unitPrice := float64(li.UnitAmount) / 100

		items = append(items, domain.OrderItem{
			ProductID:   productID,
			ProductName: name,
			Quantity:    qty,
			UnitPrice:   unitPrice,
			LineTotal:   unitPrice * float64(qty),
		})
	}

	subtotal := float64(sess.AmountSubtotal) / 100
	total := float64(sess.AmountTotal) / 100
	shippingCost := 0.0 // free shipping, storefront policy
	tax := total - subtotal - shippingCost
	if tax < 0 {
		tax = 0
	}

	email := sess.CustomerDetails.Email
	if email == "" {
		email = sess.CustomerEmail
	}
	if email == "" {
		email = "unknown@email.com"
	}

	return &domain.Order{
		CustomerEmail:     email,
		Items:             items,
		Subtotal:          subtotal,
		Tax:               tax,
		ShippingCost:      shippingCost,
		TotalAmount:       total,
		Status:            domain.OrderPending,
		PaymentStatus:     domain.PaymentPaid,
		PaymentMethod:     "stripe",
		ShippingAddress:   buildShippingAddress(sess),
		CheckoutSessionID: sess.ID,
		Notes:             fmt.Sprintf("Stripe Session: %s | Payment Intent: %s", sess.ID, sess.PaymentIntentID),
	}, nil
}

// buildShippingAddress fills required fields the processor did not supply with
// an explicit "N/A" placeholder; the schema requires presence, not semantic
// completeness. Shipping details win over customer details.
func buildShippingAddress(sess *payments.Session) domain.ShippingAddress {
	details := sess.ShippingDetails
	if details.Name == "" && details.Address == (payments.Address{}) {
		details = sess.CustomerDetails
	}

	fullName := details.Name
	if fullName == "" {
		fullName = sess.CustomerDetails.Name
	}
	if fullName == "" {
		fullName = "Customer"
	}
	phone := details.Phone
	if phone == "" {
		phone = sess.CustomerDetails.Phone
	}

	return domain.ShippingAddress{
		FullName:     fullName,
		AddressLine1: orNA(details.Address.Line1),
		AddressLine2: details.Address.Line2,
		City:         orNA(details.Address.City),
		State:        orNA(details.Address.State),
		PostalCode:   orNA(details.Address.PostalCode),
		Country:      orNA(details.Address.Country),
		Phone:        orNA(phone),
	}
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}

func parseItemRefs(raw string) []itemRef {
	if raw == "" {
		return nil
	}
	var refs []itemRef
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return nil
	}
	return refs
}

type itemRef struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f orderrepo.Filter) ([]domain.Order, error) {
	return s.orders.List(ctx, f)
}

// UpdateStatus moves an order through the fulfillment state machine. Invalid
// transitions are validation errors, not storage errors.
func (s *Service) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	if !to.Valid() {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("unknown order status %q", to)}}
	}
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(to) {
		return nil, &ValidationError{Problems: []string{
			fmt.Sprintf("cannot move order from %q to %q", current.Status, to)}}
	}
	return s.orders.SetStatus(ctx, id, to)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, to domain.PaymentStatus) (*domain.Order, error) {
	if !to.Valid() {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("unknown payment status %q", to)}}
	}
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.PaymentStatus.CanTransition(to) {
		return nil, &ValidationError{Problems: []string{
			fmt.Sprintf("cannot move payment from %q to %q", current.PaymentStatus, to)}}
	}
	return s.orders.SetPaymentStatus(ctx, id, to)
}
