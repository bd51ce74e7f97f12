package order

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain"
)

// amountTolerance absorbs floating-point drift in line and order totals. The
// processor is the price authority by the time these checks run.
const amountTolerance = 0.01

// ValidationError reports every failed invariant on an order. Orders that
// fail validation are never persisted, not even partially.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "order validation failed: " + strings.Join(e.Problems, "; ")
}

// Validate checks an order's invariants before it is written: referential
// integrity against the product catalog, per-item arithmetic, and total
// reconciliation. existingProducts holds the catalog ids that resolve.
func Validate(o *domain.Order, existingProducts map[string]bool) error {
	var problems []string

	if strings.TrimSpace(o.CustomerEmail) == "" {
		problems = append(problems, "customer email is required")
	}
	if len(o.Items) == 0 {
		problems = append(problems, "order must contain at least one item")
	}

	var missing []string
	seen := map[string]bool{}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			problems = append(problems, fmt.Sprintf("item %q: quantity must be at least 1", item.ProductName))
		}
		if item.UnitPrice < 0 {
			problems = append(problems, fmt.Sprintf("item %q: price cannot be negative", item.ProductName))
		}
		if !existingProducts[item.ProductID] && !seen[item.ProductID] {
			missing = append(missing, item.ProductID)
			seen[item.ProductID] = true
		}
		expected := float64(item.Quantity) * item.UnitPrice
		if math.Abs(item.LineTotal-expected) > amountTolerance {
			problems = append(problems, fmt.Sprintf(
				"invalid item total for %s: expected %.2f, got %.2f", item.ProductName, expected, item.LineTotal))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		problems = append(problems, "product(s) not found: "+strings.Join(missing, ", "))
	}

	expectedTotal := o.Subtotal + o.Tax + o.ShippingCost
	if math.Abs(o.TotalAmount-expectedTotal) > amountTolerance {
		problems = append(problems, fmt.Sprintf(
			"invalid total amount: expected %.2f, got %.2f", expectedTotal, o.TotalAmount))
	}

	required := []struct {
		field string
		value string
	}{
		{"fullName", o.ShippingAddress.FullName},
		{"addressLine1", o.ShippingAddress.AddressLine1},
		{"city", o.ShippingAddress.City},
		{"state", o.ShippingAddress.State},
		{"postalCode", o.ShippingAddress.PostalCode},
		{"country", o.ShippingAddress.Country},
		{"phone", o.ShippingAddress.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, "shipping address: "+f.field+" is required")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// NewOrderNumber derives a human-readable order identifier: a fixed prefix,
// the current date, and a random 4-digit suffix. Uniqueness is backed by the
// storage layer; creation retries with a fresh suffix on collision.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), 1000+rand.Intn(9000))
}
