package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeClient talks to Stripe's checkout sessions API.
type StripeClient struct {
	api *client.API
}

func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

func (c *StripeClient) CreateSession(ctx context.Context, in CreateSessionInput) (*CreatedSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
	}
	params.Context = ctx

	for _, li := range in.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(li.Name),
			Metadata: li.Metadata,
		}
		if li.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{li.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(in.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	if len(in.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(in.AllowedCountries),
		}
	}
	if in.CollectPhone {
		params.PhoneNumberCollection = &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		}
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CreatedSession{ID: sess.ID, URL: sess.URL}, nil
}

// GetSession retrieves a session with its line items and nested product data
// expanded. Event payloads are partial, so order materialization always
// re-reads the session through this path.
func (c *StripeClient) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	params.AddExpand("line_items.data.price.product")

	sess, err := c.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(sess), nil
}

func fromStripeSession(sess *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:             sess.ID,
		AmountSubtotal: sess.AmountSubtotal,
		AmountTotal:    sess.AmountTotal,
		CustomerEmail:  sess.CustomerEmail,
		Metadata:       sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	if cd := sess.CustomerDetails; cd != nil {
		out.CustomerDetails = ContactDetails{
			Name:    cd.Name,
			Email:   cd.Email,
			Phone:   cd.Phone,
			Address: fromStripeAddress(cd.Address),
		}
	}
	if sd := sess.ShippingDetails; sd != nil {
		out.ShippingDetails = ContactDetails{
			Name:    sd.Name,
			Phone:   sd.Phone,
			Address: fromStripeAddress(sd.Address),
		}
	}
	if sess.LineItems != nil {
		for _, item := range sess.LineItems.Data {
			li := SessionLineItem{
				Description: item.Description,
				Quantity:    item.Quantity,
			}
			if item.Price != nil {
				li.UnitAmount = item.Price.UnitAmount
				if item.Price.Product != nil {
					li.ProductName = item.Price.Product.Name
					li.ProductMetadata = item.Price.Product.Metadata
				}
			}
			out.LineItems = append(out.LineItems, li)
		}
	}
	return out
}

func fromStripeAddress(addr *stripe.Address) Address {
	if addr == nil {
		return Address{}
	}
	return Address{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}
