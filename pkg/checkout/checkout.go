// Package checkout freezes a cart into an immutable order snapshot: products
// are re-resolved against the catalog, totals are derived server-side and the
// snapshot is persisted atomically together with the stock decrement.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/keebstore/pkg/cart"
	"github.com/example/keebstore/pkg/models"
	"github.com/example/keebstore/pkg/pricing"
	"github.com/example/keebstore/pkg/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidAddress = errors.New("invalid shipping address")
)

// Catalog resolves product references at order-capture time.
type Catalog interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// OrderPlacer persists the snapshot and the stock decrement all-or-nothing.
type OrderPlacer interface {
	Place(ctx context.Context, order *models.Order) error
}

type Service struct {
	catalog    Catalog
	orders     OrderPlacer
	carts      cart.Store
	calculator *pricing.Calculator
	logger     *zap.Logger
}

func NewService(catalog Catalog, orders OrderPlacer, carts cart.Store, calculator *pricing.Calculator, logger *zap.Logger) *Service {
	return &Service{
		catalog:    catalog,
		orders:     orders,
		carts:      carts,
		calculator: calculator,
		logger:     logger,
	}
}

// Request carries everything needed to place an order from a cart.
type Request struct {
	CartKey         string
	UserID          primitive.ObjectID
	Items           []cart.Item
	ShippingAddress models.ShippingAddress
	ShippingMethod  string
	PaymentMethod   string
}

// PlaceOrder validates the cart, captures current catalog state into order
// items, prices the order and persists it. The cart is cleared only after the
// order lands; any failure leaves the cart intact.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var subtotal float64
	for _, line := range req.Items {
		product, err := s.catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", line.ProductID.Hex(), err)
		}
		if product.Stock < line.Quantity {
			return nil, repository.ErrInsufficientStock
		}

		// Name, price and image are captured here; later catalog edits do
		// not reach the snapshot.
		items = append(items, models.OrderItem{
			ProductID:       product.ID,
			Name:            product.Name,
			ImageURL:        product.PrimaryImage(),
			UnitPrice:       product.Price,
			Quantity:        line.Quantity,
			SelectedVariant: line.SelectedVariant,
		})
		subtotal += product.Price * float64(line.Quantity)
	}

	quote := s.calculator.QuoteFor(subtotal, req.ShippingMethod).Rounded()

	now := time.Now()
	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          req.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  req.ShippingMethod,
		Subtotal:        quote.Subtotal,
		ShippingCost:    quote.ShippingCost,
		Tax:             quote.Tax,
		Total:           quote.Total,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Place(ctx, order); err != nil {
		return nil, err
	}

	if req.CartKey != "" {
		if err := s.carts.Clear(ctx, req.CartKey); err != nil {
			// The order is already placed; a stale cart is recoverable.
			s.logger.Warn("failed to clear cart after checkout",
				zap.String("cart_key", req.CartKey),
				zap.Error(err))
		}
	}

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", req.UserID.Hex()),
		zap.Int("item_count", len(order.Items)),
		zap.Float64("total", order.Total))

	return order, nil
}

func generateOrderNumber() string {
	return "ORD-" + time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}
