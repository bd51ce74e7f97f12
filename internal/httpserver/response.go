package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/order"
)

// respondError maps service errors onto the status taxonomy: 400 for
// client/validation problems, 404/409 for storage outcomes, 500 otherwise.
func respondError(c *gin.Context, err error) {
	var verr *order.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, checkout.ErrInvalidCart),
		errors.Is(err, checkout.ErrNoOrigin),
		errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
