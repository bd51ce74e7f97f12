package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/catalog"
)

type createProductRequest struct {
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description" binding:"required"`
	Price          float64           `json:"price" binding:"required,gt=0"`
	CompareAtPrice *float64          `json:"compareAtPrice"`
	Category       string            `json:"category" binding:"required"`
	Brand          string            `json:"brand"`
	Images         []string          `json:"images" binding:"required,min=1"`
	Stock          int               `json:"stock" binding:"gte=0"`
	SKU            string            `json:"sku" binding:"required"`
	IsActive       *bool             `json:"isActive"`
	IsFeatured     *bool             `json:"isFeatured"`
	Specifications map[string]string `json:"specifications"`
	Tags           []string          `json:"tags"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func listProductsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := productrepo.Filter{
			Category:     c.Query("category"),
			ActiveOnly:   c.Query("active") == "true",
			FeaturedOnly: c.Query("featured") == "true",
			NameQuery:    c.Query("q"),
		}
		if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
			f.Limit = limit
		}
		products, err := svc.List(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func createProductHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		product, err := svc.Create(c.Request.Context(), catalog.CreateInput{
			Name:           req.Name,
			Description:    req.Description,
			Price:          req.Price,
			CompareAtPrice: req.CompareAtPrice,
			Category:       req.Category,
			Brand:          req.Brand,
			Images:         req.Images,
			Stock:          req.Stock,
			SKU:            req.SKU,
			IsActive:       req.IsActive,
			IsFeatured:     req.IsFeatured,
			Specifications: req.Specifications,
			Tags:           req.Tags,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"product": product})
	}
}

func getProductHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

func updateProductHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		product, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

func adjustStockHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adjustStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		product, err := svc.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

func deactivateProductHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.SetActive(c.Request.Context(), c.Param("id"), false)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}
