package payments

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76/webhook"
)

// Event types the webhook endpoint dispatches on. Stripe sends many more;
// unrecognized types are acknowledged and dropped.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// Event is a verified webhook notification. ObjectID identifies the event's
// subject: a checkout session or payment intent, depending on Type.
type Event struct {
	ID       string
	Type     string
	ObjectID string
}

// StripeVerifier checks webhook payloads against the endpoint's shared secret.
// This is the only trust gate for everything downstream of the webhook.
type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, signature, v.secret)
	if err != nil {
		return nil, err
	}
	var obj struct {
		ID string `json:"id"`
	}
	if len(ev.Data.Raw) > 0 {
		if err := json.Unmarshal(ev.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("decode event object: %w", err)
		}
	}
	return &Event{ID: ev.ID, Type: string(ev.Type), ObjectID: obj.ID}, nil
}
