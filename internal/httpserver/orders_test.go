package httpserver

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service/order"
)

func newOrderRouter(svc OrderService) http.Handler {
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, Deps{OrderSvc: svc})
}

func TestGetOrderNotFound(t *testing.T) {
	router := newOrderRouter(&notFoundOrderService{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

type notFoundOrderService struct {
	stubOrderService
}

func (s *notFoundOrderService) Get(_ context.Context, _ string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := &stubOrderService{order: &domain.Order{ID: "order-1", Status: domain.OrderProcessing}}
	router := newOrderRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/order-1/status", bytes.NewBufferString(`{"status":"processing"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	router := newOrderRouter(&invalidTransitionOrderService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/order-1/status", bytes.NewBufferString(`{"status":"delivered"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

type invalidTransitionOrderService struct {
	stubOrderService
}

func (s *invalidTransitionOrderService) UpdateStatus(_ context.Context, _ string, to domain.OrderStatus) (*domain.Order, error) {
	return nil, &order.ValidationError{Problems: []string{`cannot move order from "pending" to "delivered"`}}
}

func TestUpdateOrderStatusMissingBody(t *testing.T) {
	svc := &stubOrderService{}
	router := newOrderRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/order-1/status", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
