package server

import (
	"errors"
	"net/http"

	"github.com/example/keebstore/pkg/cart"
	"github.com/example/keebstore/pkg/checkout"
	"github.com/example/keebstore/pkg/models"
	"github.com/example/keebstore/pkg/repository"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type orderItemRequest struct {
	Product         string            `json:"product" binding:"required"`
	Quantity        int               `json:"quantity" binding:"required,min=1"`
	SelectedVariant map[string]string `json:"selectedVariant"`
}

// createOrderRequest mirrors the client checkout payload. Client-computed
// totals are accepted for contract compatibility but the server reprices the
// order from the catalog.
type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingMethod  string                 `json:"shippingMethod"`
	Subtotal        float64                `json:"subtotal"`
	ShippingCost    float64                `json:"shippingCost"`
	Tax             float64                `json:"tax"`
	Total           float64                `json:"total"`
}

type updateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

func (s *Server) createOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	items := make([]cart.Item, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id in items"})
			return
		}
		items = append(items, cart.Item{
			ProductID:       productID,
			Quantity:        item.Quantity,
			SelectedVariant: item.SelectedVariant,
		})
	}

	method := req.ShippingMethod
	if method == "" {
		method = models.ShippingStandard
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "stripe"
	}

	order, err := s.deps.Checkout.PlaceOrder(c.Request.Context(), checkout.Request{
		CartKey:         "user:" + userID.Hex(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		ShippingMethod:  method,
		PaymentMethod:   paymentMethod,
	})
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"message": "cart is empty"})
		return
	case errors.Is(err, repository.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"message": "insufficient stock"})
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"message": "one or more products no longer exist"})
		return
	case errors.Is(err, checkout.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case err != nil:
		s.logger.Error("failed to place order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to place order"})
		return
	}

	s.recordAudit(c, "create_order", order.ID.Hex(), bson.M{"total": order.Total})
	c.JSON(http.StatusCreated, order)
}

// orderForCaller fetches the order and enforces owner-or-admin access.
func (s *Server) orderForCaller(c *gin.Context) (*models.Order, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return nil, false
	}

	order, err := s.deps.Orders.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to get order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to get order"})
		return nil, false
	}

	if order.UserID.Hex() != c.GetString(ctxUserID) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to access this order"})
		return nil, false
	}
	return order, true
}

func (s *Server) getOrder(c *gin.Context) {
	order, ok := s.orderForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) myOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}

	orders, err := s.deps.Orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.deps.Orders.ListAll(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) payOrder(c *gin.Context) {
	order, ok := s.orderForCaller(c)
	if !ok {
		return
	}

	var result models.PaymentResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := s.deps.Verifier.Verify(c.Request.Context(), order.ID.Hex(), result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "payment could not be verified"})
		return
	}

	if err := s.deps.Orders.MarkPaid(c.Request.Context(), order.ID, result); err != nil {
		s.logger.Error("failed to mark order paid", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update order"})
		return
	}

	s.recordAudit(c, "pay_order", order.ID.Hex(), bson.M{"payment_id": result.ID})

	updated, err := s.deps.Orders.GetByID(c.Request.Context(), order.ID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "order paid"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	status := models.OrderStatus(req.Status)
	if !models.ValidOrderStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order status"})
		return
	}

	order, err := s.deps.Orders.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to get order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update order"})
		return
	}

	if !order.CanTransition(status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "order is in a terminal state"})
		return
	}

	if err := s.deps.Orders.UpdateStatus(c.Request.Context(), id, status); err != nil {
		s.logger.Error("failed to update order status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update order"})
		return
	}

	if req.TrackingNumber != "" {
		if err := s.deps.Orders.SetTracking(c.Request.Context(), id, req.TrackingNumber); err != nil {
			s.logger.Error("failed to set tracking number", zap.Error(err))
		}
	}

	s.recordAudit(c, "update_order_status", id.Hex(), bson.M{"status": req.Status})

	updated, err := s.deps.Orders.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
		return
	}
	c.JSON(http.StatusOK, updated)
}
