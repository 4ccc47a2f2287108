// Package cart implements the shopping cart aggregate: an ordered collection
// of line items unique by product, with derived totals recomputed on read.
package cart

import "go.mongodb.org/mongo-driver/bson/primitive"

// Item is one product-quantity-variant line within a cart. Name, image and
// unit price are captured from the catalog when the item is added.
type Item struct {
	ProductID       primitive.ObjectID `json:"productId"`
	Name            string             `json:"name"`
	ImageURL        string             `json:"image,omitempty"`
	UnitPrice       float64            `json:"price"`
	Quantity        int                `json:"quantity"`
	SelectedVariant map[string]string  `json:"selectedVariant,omitempty"`
}

// Cart holds the line items for one shopper. Items keep insertion order and
// are unique by product ID. The zero value is an empty, usable cart.
type Cart struct {
	Items []Item `json:"items"`
}

func New() *Cart {
	return &Cart{}
}

// AddItem merges by product identity: if the product is already in the cart
// its quantity is incremented and the originally selected variant is kept;
// otherwise the item is appended. Quantities below 1 count as 1.
func (c *Cart) AddItem(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity replaces the quantity of the matching item, clamping below 1 to
// 1. A missing product is a no-op: updates never create items.
func (c *Cart) SetQuantity(productID primitive.ObjectID, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem removes the matching item if present. Removing an absent product
// is a no-op, so repeated removals are safe.
func (c *Cart) RemoveItem(productID primitive.ObjectID) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.Items = nil
}

// Subtotal is the derived sum of unit price times quantity over all items.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// Count is the total quantity across all items.
func (c *Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
