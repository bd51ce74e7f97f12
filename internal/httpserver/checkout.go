package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/service/checkout"
)

type checkoutItemRequest struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"gte=0"`
	Quantity int     `json:"quantity" binding:"required,gt=0"`
	Image    string  `json:"image"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest `json:"items" binding:"required,min=1,dive"`
	CustomerEmail string                `json:"customerEmail" binding:"omitempty,email"`
}

// checkoutHandler converts a submitted cart into a hosted checkout session and
// returns its redirect URL. The Origin header supplies the success/cancel
// destinations; a request without one cannot proceed.
func checkoutHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing origin header"})
			return
		}

		items := make([]checkout.Item, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, checkout.Item{
				ID:       item.ID,
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
				Image:    item.Image,
			})
		}

		url, err := svc.CreateSession(c.Request.Context(), origin, checkout.CreateInput{
			Items:         items,
			CustomerEmail: req.CustomerEmail,
		})
		if err != nil {
			if errors.Is(err, checkout.ErrInvalidCart) || errors.Is(err, checkout.ErrNoOrigin) {
				respondError(c, err)
				return
			}
			logger.Printf("checkout: create session failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error creating checkout session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}
