package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/payments"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
)

// CatalogService is the product surface the handlers need.
type CatalogService interface {
	Create(ctx context.Context, in catalog.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in catalog.UpdateInput) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, f productrepo.Filter) ([]domain.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Product, error)
}

type CheckoutService interface {
	CreateSession(ctx context.Context, origin string, in checkout.CreateInput) (string, error)
}

type OrderService interface {
	HandleCompletedSession(ctx context.Context, sessionID string) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.Filter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, to domain.PaymentStatus) (*domain.Order, error)
}

// EventVerifier authenticates raw webhook payloads.
type EventVerifier interface {
	Verify(payload []byte, signature string) (*payments.Event, error)
}

type Deps struct {
	CatalogSvc     CatalogService
	CheckoutSvc    CheckoutService
	OrderSvc       OrderService
	Verifier       EventVerifier
	WebhookSecret  string
	AllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = deps.AllowedOrigins
		corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.GET("/products", listProductsHandler(deps.CatalogSvc))
	api.POST("/products", createProductHandler(deps.CatalogSvc))
	api.GET("/products/:slug", getProductHandler(deps.CatalogSvc))
	api.PATCH("/products/:id", updateProductHandler(deps.CatalogSvc))
	api.PATCH("/products/:id/stock", adjustStockHandler(deps.CatalogSvc))
	api.DELETE("/products/:id", deactivateProductHandler(deps.CatalogSvc))

	api.POST("/checkout", checkoutHandler(deps.CheckoutSvc, logger))
	api.POST("/webhook", webhookHandler(deps.OrderSvc, deps.Verifier, deps.WebhookSecret, logger))

	api.GET("/orders", listOrdersHandler(deps.OrderSvc))
	api.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
	api.PATCH("/orders/:id/status", updateOrderStatusHandler(deps.OrderSvc))
	api.PATCH("/orders/:id/payment-status", updatePaymentStatusHandler(deps.OrderSvc))

	return router
}
