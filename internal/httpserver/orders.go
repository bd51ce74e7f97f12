package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := orderrepo.Filter{
			Status:        domain.OrderStatus(c.Query("status")),
			PaymentStatus: domain.PaymentStatus(c.Query("paymentStatus")),
			CustomerEmail: c.Query("email"),
		}
		if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
			f.Limit = limit
		}
		orders, err := svc.List(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func updateOrderStatusHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func updatePaymentStatusHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		order, err := svc.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.PaymentStatus))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
