package server

import (
	"errors"
	"net/http"

	"github.com/example/keebstore/pkg/cart"
	"github.com/example/keebstore/pkg/pricing"
	"github.com/example/keebstore/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type addToCartRequest struct {
	ProductID       string            `json:"productId" binding:"required"`
	Quantity        int               `json:"quantity" binding:"required,min=1"`
	SelectedVariant map[string]string `json:"selectedVariant"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// cartKey scopes a cart to the authenticated user or, failing that, the
// caller-supplied session ID.
func (s *Server) cartKey(c *gin.Context) string {
	if userID := c.GetString(ctxUserID); userID != "" {
		return "user:" + userID
	}
	if sessionID := c.GetHeader("X-Session-Id"); sessionID != "" {
		return "session:" + sessionID
	}
	return ""
}

func (s *Server) loadCart(c *gin.Context) (string, *cart.Cart, bool) {
	key := s.cartKey(c)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "a session id or authentication is required"})
		return "", nil, false
	}
	crt, err := s.deps.Carts.Load(c.Request.Context(), key)
	if err != nil {
		s.logger.Error("failed to load cart", zap.String("cart_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load cart"})
		return "", nil, false
	}
	return key, crt, true
}

func (s *Server) respondCart(c *gin.Context, crt *cart.Cart) {
	items := crt.Items
	if items == nil {
		items = []cart.Item{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"subtotal": pricing.Round2(crt.Subtotal()),
		"count":    crt.Count(),
	})
}

func (s *Server) getCart(c *gin.Context) {
	_, crt, ok := s.loadCart(c)
	if !ok {
		return
	}
	s.respondCart(c, crt)
}

func (s *Server) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	product, err := s.deps.Products.GetByID(c.Request.Context(), productID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to get product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to add to cart"})
		return
	}
	if product.Stock < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "product is out of stock"})
		return
	}

	key, crt, ok := s.loadCart(c)
	if !ok {
		return
	}

	// The add path clamps the requested quantity to available stock; price,
	// name and image are captured from the catalog at add time.
	qty := req.Quantity
	if qty > product.Stock {
		qty = product.Stock
	}
	crt.AddItem(cart.Item{
		ProductID:       product.ID,
		Name:            product.Name,
		ImageURL:        product.PrimaryImage(),
		UnitPrice:       product.Price,
		Quantity:        qty,
		SelectedVariant: req.SelectedVariant,
	})

	if err := s.deps.Carts.Save(c.Request.Context(), key, crt); err != nil {
		s.logger.Error("failed to save cart", zap.String("cart_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save cart"})
		return
	}
	s.respondCart(c, crt)
}

func (s *Server) updateCartItem(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	key, crt, ok := s.loadCart(c)
	if !ok {
		return
	}

	crt.SetQuantity(productID, req.Quantity)

	if err := s.deps.Carts.Save(c.Request.Context(), key, crt); err != nil {
		s.logger.Error("failed to save cart", zap.String("cart_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save cart"})
		return
	}
	s.respondCart(c, crt)
}

func (s *Server) removeCartItem(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	key, crt, ok := s.loadCart(c)
	if !ok {
		return
	}

	crt.RemoveItem(productID)

	if err := s.deps.Carts.Save(c.Request.Context(), key, crt); err != nil {
		s.logger.Error("failed to save cart", zap.String("cart_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save cart"})
		return
	}
	s.respondCart(c, crt)
}

// quoteCart prices the current cart under each shipping method so the client
// can render shipping options before checkout.
func (s *Server) quoteCart(c *gin.Context) {
	_, crt, ok := s.loadCart(c)
	if !ok {
		return
	}

	subtotal := crt.Subtotal()
	c.JSON(http.StatusOK, gin.H{
		"standard":  s.deps.Pricing.QuoteFor(subtotal, "standard").Rounded(),
		"express":   s.deps.Pricing.QuoteFor(subtotal, "express").Rounded(),
		"overnight": s.deps.Pricing.QuoteFor(subtotal, "overnight").Rounded(),
	})
}

func (s *Server) clearCart(c *gin.Context) {
	key := s.cartKey(c)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "a session id or authentication is required"})
		return
	}
	if err := s.deps.Carts.Clear(c.Request.Context(), key); err != nil {
		s.logger.Error("failed to clear cart", zap.String("cart_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
