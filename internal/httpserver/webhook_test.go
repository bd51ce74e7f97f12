package httpserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/payments"
	orderrepo "storefront/internal/repository/order"
)

type stubOrderService struct {
	order       *domain.Order
	handleErr   error
	handleCalls int
	lastSession string
}

func (s *stubOrderService) HandleCompletedSession(_ context.Context, sessionID string) (*domain.Order, error) {
	s.handleCalls++
	s.lastSession = sessionID
	return s.order, s.handleErr
}

func (s *stubOrderService) Get(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, nil
}

func (s *stubOrderService) List(_ context.Context, _ orderrepo.Filter) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, _ string, _ domain.OrderStatus) (*domain.Order, error) {
	return s.order, nil
}

func (s *stubOrderService) UpdatePaymentStatus(_ context.Context, _ string, _ domain.PaymentStatus) (*domain.Order, error) {
	return s.order, nil
}

type stubVerifier struct {
	event   *payments.Event
	err     error
	calls   int
	lastSig string
}

func (s *stubVerifier) Verify(_ []byte, signature string) (*payments.Event, error) {
	s.calls++
	s.lastSig = signature
	return s.event, s.err
}

func newWebhookRouter(orders *stubOrderService, verifier *stubVerifier, secret string) http.Handler {
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, Deps{
		OrderSvc:      orders,
		Verifier:      verifier,
		WebhookSecret: secret,
	})
}

func postWebhook(t *testing.T, router http.Handler, body string, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewBufferString(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookMissingSignature(t *testing.T) {
	orders := &stubOrderService{}
	verifier := &stubVerifier{}
	router := newWebhookRouter(orders, verifier, "whsec_test")

	rec := postWebhook(t, router, `{}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if verifier.calls != 0 {
		t.Fatalf("expected no verification, got %d", verifier.calls)
	}
}

func TestWebhookMissingSecret(t *testing.T) {
	router := newWebhookRouter(&stubOrderService{}, &stubVerifier{}, "")
	rec := postWebhook(t, router, `{}`, "sig")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWebhookBadSignature(t *testing.T) {
	orders := &stubOrderService{}
	verifier := &stubVerifier{err: errors.New("bad signature")}
	router := newWebhookRouter(orders, verifier, "whsec_test")

	rec := postWebhook(t, router, `{}`, "sig")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if orders.handleCalls != 0 {
		t.Fatalf("unverified event must not reach the order service, got %d calls", orders.handleCalls)
	}
}

func TestWebhookCompletedSession(t *testing.T) {
	orders := &stubOrderService{order: &domain.Order{ID: "order-1"}}
	verifier := &stubVerifier{event: &payments.Event{
		ID:       "evt_1",
		Type:     payments.EventCheckoutCompleted,
		ObjectID: "cs_test_1",
	}}
	router := newWebhookRouter(orders, verifier, "whsec_test")

	rec := postWebhook(t, router, `{"id":"evt_1"}`, "sig")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if orders.handleCalls != 1 || orders.lastSession != "cs_test_1" {
		t.Fatalf("expected one handled session cs_test_1, got %d/%q", orders.handleCalls, orders.lastSession)
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestWebhookMaterializationFailure(t *testing.T) {
	orders := &stubOrderService{handleErr: errors.New("db down")}
	verifier := &stubVerifier{event: &payments.Event{
		Type:     payments.EventCheckoutCompleted,
		ObjectID: "cs_test_1",
	}}
	router := newWebhookRouter(orders, verifier, "whsec_test")

	rec := postWebhook(t, router, `{}`, "sig")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 so the processor redelivers, got %d", rec.Code)
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	for _, eventType := range []string{payments.EventPaymentFailed, "customer.created"} {
		orders := &stubOrderService{}
		verifier := &stubVerifier{event: &payments.Event{Type: eventType, ObjectID: "obj_1"}}
		router := newWebhookRouter(orders, verifier, "whsec_test")

		rec := postWebhook(t, router, `{}`, "sig")
		if rec.Code != http.StatusOK {
			t.Fatalf("event %s: expected 200, got %d", eventType, rec.Code)
		}
		if orders.handleCalls != 0 {
			t.Fatalf("event %s: expected no order handling, got %d", eventType, orders.handleCalls)
		}
	}
}
