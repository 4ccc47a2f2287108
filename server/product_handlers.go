package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/example/keebstore/pkg/models"
	"github.com/example/keebstore/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (s *Server) listProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	filter := repository.ProductFilter{
		Featured: c.Query("featured") != "",
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	}

	products, total, err := s.deps.Products.List(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	if limit <= 0 {
		limit = 12
	}
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"page":     page,
		"pages":    int(math.Ceil(float64(total) / float64(limit))),
		"total":    total,
	})
}

func (s *Server) getProductBySlug(c *gin.Context) {
	product, err := s.deps.Products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to get product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to get product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) createProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if product.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "product name is required"})
		return
	}
	if product.Category == "" {
		product.Category = models.CategorySplitKeyboard
	}
	if !models.ValidCategory(product.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid category"})
		return
	}
	if product.Price < 0 || product.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "price and stock must not be negative"})
		return
	}

	if err := s.deps.Products.Create(c.Request.Context(), &product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "a product with this name already exists"})
			return
		}
		s.logger.Error("failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create product"})
		return
	}

	s.recordAudit(c, "create_product", product.ID.Hex(), nil)
	c.JSON(http.StatusCreated, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	existing, err := s.deps.Products.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to get product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update product"})
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.Rating = existing.Rating
	if product.Category != "" && !models.ValidCategory(product.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid category"})
		return
	}

	if err := s.deps.Products.Update(c.Request.Context(), &product); err != nil {
		s.logger.Error("failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update product"})
		return
	}

	s.recordAudit(c, "update_product", product.ID.Hex(), nil)
	c.JSON(http.StatusOK, product)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	if err := s.deps.Products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		s.logger.Error("failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete product"})
		return
	}

	s.recordAudit(c, "delete_product", id.Hex(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "product removed"})
}
