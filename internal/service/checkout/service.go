package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"storefront/internal/payments"
)

var (
	// ErrNoOrigin means the request's origin could not be determined, so
	// success/cancel destinations cannot be built.
	ErrNoOrigin = errors.New("missing origin")

	// ErrNoRedirectURL means the processor accepted the session but returned
	// no hosted-checkout URL.
	ErrNoRedirectURL = errors.New("processor returned no redirect url")

	// ErrInvalidCart marks client-side input problems; no session is created.
	ErrInvalidCart = errors.New("invalid checkout request")
)

type sessionCreator interface {
	CreateSession(ctx context.Context, in payments.CreateSessionInput) (*payments.CreatedSession, error)
}

// Countries the processor may collect shipping addresses for.
var allowedCountries = []string{"US", "CA", "GB", "IE", "DE", "FR", "ES", "IT", "NL", "AU", "NZ"}

type Service struct {
	payments sessionCreator
	baseURL  string
	currency string
}

func New(paymentsClient sessionCreator, baseURL, currency string) *Service {
	return &Service{payments: paymentsClient, baseURL: baseURL, currency: currency}
}

type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

type CreateInput struct {
	Items         []Item `json:"items"`
	CustomerEmail string `json:"customerEmail,omitempty"`
}

type itemRef struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

// CreateSession validates the submitted cart and asks the processor for a
// hosted checkout session, returning its redirect URL. Product identity is
// embedded twice: per line item in the product metadata, and as a serialized
// itemIds list in session metadata for the webhook to fall back on.
func (s *Service) CreateSession(ctx context.Context, origin string, in CreateInput) (string, error) {
	if strings.TrimSpace(origin) == "" {
		return "", ErrNoOrigin
	}
	if len(in.Items) == 0 {
		return "", fmt.Errorf("%w: items required", ErrInvalidCart)
	}

	lineItems := make([]payments.LineItemInput, 0, len(in.Items))
	refs := make([]itemRef, 0, len(in.Items))
	for i, item := range in.Items {
		if strings.TrimSpace(item.ID) == "" {
			return "", fmt.Errorf("%w: item %d: id required", ErrInvalidCart, i)
		}
		if strings.TrimSpace(item.Name) == "" {
			return "", fmt.Errorf("%w: item %d: name required", ErrInvalidCart, i)
		}
		if item.Price < 0 {
			return "", fmt.Errorf("%w: item %d: price must not be negative", ErrInvalidCart, i)
		}
		if item.Quantity <= 0 {
			return "", fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidCart, i)
		}
		lineItems = append(lineItems, payments.LineItemInput{
			Name:       item.Name,
			UnitAmount: toMinorUnits(item.Price),
			Quantity:   int64(item.Quantity),
			ImageURL:   normalizeImageURL(item.Image, s.baseURL),
			Metadata:   map[string]string{"productId": item.ID},
		})
		refs = append(refs, itemRef{ID: item.ID, Qty: item.Quantity})
	}

	itemIDs, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("encode item ids: %w", err)
	}

	origin = strings.TrimRight(origin, "/")
	created, err := s.payments.CreateSession(ctx, payments.CreateSessionInput{
		Currency:  s.currency,
		LineItems: lineItems,
		Metadata: map[string]string{
			"itemIds":   string(itemIDs),
			"itemCount": strconv.Itoa(len(in.Items)),
		},
		SuccessURL:       origin + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        origin + "/cart",
		CustomerEmail:    strings.TrimSpace(in.CustomerEmail),
		AllowedCountries: allowedCountries,
		CollectPhone:     true,
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if created.URL == "" {
		return "", ErrNoRedirectURL
	}
	return created.URL, nil
}

// toMinorUnits converts a decimal price to integer cents, rounding to the
// nearest cent. Fractional-cent prices are not supported past this point.
func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// normalizeImageURL returns an absolute URL for the processor, or empty when
// the reference is neither absolute nor site-relative. A malformed image
// reference is dropped rather than forwarded.
func normalizeImageURL(image, baseURL string) string {
	switch {
	case image == "":
		return ""
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return image
	case strings.HasPrefix(image, "/"):
		return strings.TrimRight(baseURL, "/") + image
	default:
		return ""
	}
}
