package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/catalog"
)

type stubCatalogService struct {
	product    *domain.Product
	products   []domain.Product
	err        error
	lastFilter productrepo.Filter
	lastCreate catalog.CreateInput
	lastID     string
	lastDelta  int
	lastActive bool
}

func (s *stubCatalogService) Create(_ context.Context, in catalog.CreateInput) (*domain.Product, error) {
	s.lastCreate = in
	return s.product, s.err
}

func (s *stubCatalogService) Update(_ context.Context, id string, _ catalog.UpdateInput) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func (s *stubCatalogService) Get(_ context.Context, id string) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func (s *stubCatalogService) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	s.lastID = slug
	return s.product, s.err
}

func (s *stubCatalogService) List(_ context.Context, f productrepo.Filter) ([]domain.Product, error) {
	s.lastFilter = f
	return s.products, s.err
}

func (s *stubCatalogService) AdjustStock(_ context.Context, id string, delta int) (*domain.Product, error) {
	s.lastID = id
	s.lastDelta = delta
	return s.product, s.err
}

func (s *stubCatalogService) SetActive(_ context.Context, id string, active bool) (*domain.Product, error) {
	s.lastID = id
	s.lastActive = active
	return s.product, s.err
}

func newCatalogRouter(svc *stubCatalogService) http.Handler {
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, Deps{CatalogSvc: svc})
}

func TestListProductsFilters(t *testing.T) {
	svc := &stubCatalogService{}
	router := newCatalogRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=electronics&active=true&featured=true&q=head&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := productrepo.Filter{Category: "electronics", ActiveOnly: true, FeaturedOnly: true, NameQuery: "head", Limit: 5}
	if svc.lastFilter != want {
		t.Fatalf("unexpected filter %+v", svc.lastFilter)
	}

	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Products == nil {
		t.Fatal("empty list must serialize as [], not null")
	}
}

func TestCreateProduct(t *testing.T) {
	svc := &stubCatalogService{product: &domain.Product{ID: "prod-1", Name: "Widget"}}
	router := newCatalogRouter(svc)

	body := `{"name":"Widget","description":"A widget","price":19.99,"category":"misc","images":["/w.jpg"],"sku":"W-1","stock":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.Name != "Widget" || svc.lastCreate.SKU != "W-1" {
		t.Fatalf("unexpected create input %+v", svc.lastCreate)
	}
}

func TestCreateProductBadBody(t *testing.T) {
	cases := []string{
		`{}`,
		`{"name":"Widget","description":"d","price":0,"category":"misc","images":["/w.jpg"],"sku":"W-1"}`,
		`{"name":"Widget","description":"d","price":1,"category":"misc","images":[],"sku":"W-1"}`,
	}
	for _, body := range cases {
		router := newCatalogRouter(&stubCatalogService{})
		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestProductErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{fmt.Errorf("%w: sku required", catalog.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("scan row"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &stubCatalogService{err: tc.err}
		router := newCatalogRouter(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/products/some-widget", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestAdjustStock(t *testing.T) {
	svc := &stubCatalogService{product: &domain.Product{ID: "prod-1", Stock: 7}}
	router := newCatalogRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/products/prod-1/stock", bytes.NewBufferString(`{"delta":-3}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastID != "prod-1" || svc.lastDelta != -3 {
		t.Fatalf("unexpected call %q/%d", svc.lastID, svc.lastDelta)
	}
}

func TestDeactivateProduct(t *testing.T) {
	svc := &stubCatalogService{product: &domain.Product{ID: "prod-1"}}
	router := newCatalogRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/prod-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastID != "prod-1" || svc.lastActive {
		t.Fatalf("expected deactivation of prod-1, got %q active=%v", svc.lastID, svc.lastActive)
	}
}
