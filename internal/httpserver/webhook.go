package httpserver

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/payments"
)

// webhookHandler receives signed processor events. Signature verification is
// the only trust gate: nothing downstream runs until the payload checks out.
// A non-2xx response makes the processor redeliver, so only genuine
// processing failures return 500.
func webhookHandler(orders OrderService, verifier EventVerifier, secret string, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		signature := c.GetHeader("Stripe-Signature")
		if signature == "" {
			logger.Printf("webhook: missing signature header")
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing stripe-signature header"})
			return
		}
		if secret == "" {
			logger.Printf("webhook: webhook secret not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
			return
		}

		event, err := verifier.Verify(payload, signature)
		if err != nil {
			logger.Printf("webhook: signature verification failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "webhook signature verification failed"})
			return
		}

		switch event.Type {
		case payments.EventCheckoutCompleted:
			if _, err := orders.HandleCompletedSession(c.Request.Context(), event.ObjectID); err != nil {
				logger.Printf("webhook: order materialization for session %s failed: %v", event.ObjectID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handler failed"})
				return
			}
		case payments.EventPaymentFailed:
			logger.Printf("webhook: payment failed for payment intent %s", event.ObjectID)
		default:
			logger.Printf("webhook: ignoring event type %s", event.Type)
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
