package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus captures the fulfillment lifecycle of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

const (
	ShippingStandard  = "standard"
	ShippingExpress   = "express"
	ShippingOvernight = "overnight"
)

// OrderItem is a line item frozen at checkout time: name, price and image are
// copied from the catalog so later product edits cannot alter the order.
type OrderItem struct {
	ProductID       primitive.ObjectID `bson:"product_id" json:"product"`
	Name            string             `bson:"name" json:"name"`
	ImageURL        string             `bson:"image_url,omitempty" json:"image,omitempty"`
	UnitPrice       float64            `bson:"unit_price" json:"price"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	SelectedVariant map[string]string  `bson:"selected_variant,omitempty" json:"selectedVariant,omitempty"`
}

// PaymentResult is the payload recorded when an order is marked paid.
type PaymentResult struct {
	ID           string `bson:"id" json:"id"`
	Status       string `bson:"status" json:"status"`
	UpdateTime   string `bson:"update_time" json:"update_time"`
	EmailAddress string `bson:"email_address" json:"email_address"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"order_number" json:"orderNumber"`
	UserID          primitive.ObjectID `bson:"user_id" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   string             `bson:"payment_method" json:"paymentMethod"`
	ShippingMethod  string             `bson:"shipping_method" json:"shippingMethod"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	ShippingCost    float64            `bson:"shipping_cost" json:"shippingCost"`
	Tax             float64            `bson:"tax" json:"tax"`
	Total           float64            `bson:"total" json:"total"`
	Status          OrderStatus        `bson:"status" json:"status"`
	IsPaid          bool               `bson:"is_paid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult     `bson:"payment_result,omitempty" json:"paymentResult,omitempty"`
	TrackingNumber  string             `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal indicates whether the order has reached a final state.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an administrator may move the order to the
// given status. Any forward or backward move is allowed between non-terminal
// states; terminal orders stay where they are.
func (o *Order) CanTransition(to OrderStatus) bool {
	if !ValidOrderStatus(to) {
		return false
	}
	if o.IsTerminal() {
		return false
	}
	return true
}
