package cart

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newItem(id primitive.ObjectID, price float64, qty int) Item {
	return Item{ProductID: id, Name: "item", UnitPrice: price, Quantity: qty}
}

func TestAddItemMergesByProduct(t *testing.T) {
	productA := primitive.NewObjectID()

	c := New()
	c.AddItem(newItem(productA, 10, 1))
	c.AddItem(newItem(productA, 10, 1))
	c.AddItem(newItem(productA, 10, 3))

	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line item, got %d", len(c.Items))
	}
	if got := c.Items[0].Quantity; got != 5 {
		t.Errorf("expected merged quantity 5, got %d", got)
	}
}

func TestAddItemKeepsOriginalVariantOnMerge(t *testing.T) {
	productA := primitive.NewObjectID()

	black := newItem(productA, 10, 1)
	black.SelectedVariant = map[string]string{"Color": "Black"}
	white := newItem(productA, 10, 1)
	white.SelectedVariant = map[string]string{"Color": "White"}

	c := New()
	c.AddItem(black)
	c.AddItem(white)

	if len(c.Items) != 1 {
		t.Fatalf("expected additions of the same product to merge, got %d items", len(c.Items))
	}
	if got := c.Items[0].Quantity; got != 2 {
		t.Errorf("expected quantity 2, got %d", got)
	}
	if got := c.Items[0].SelectedVariant["Color"]; got != "Black" {
		t.Errorf("expected first-selected variant to win, got %q", got)
	}
}

func TestAddItemAppendsDistinctProducts(t *testing.T) {
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()

	c := New()
	c.AddItem(newItem(productA, 10, 1))
	c.AddItem(newItem(productB, 15, 2))

	if len(c.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(c.Items))
	}
	if c.Items[0].ProductID != productA || c.Items[1].ProductID != productB {
		t.Error("expected insertion order to be preserved")
	}
}

func TestAddItemClampsQuantity(t *testing.T) {
	c := New()
	c.AddItem(newItem(primitive.NewObjectID(), 10, 0))

	if got := c.Items[0].Quantity; got != 1 {
		t.Errorf("expected quantity clamped to 1, got %d", got)
	}
}

func TestSetQuantity(t *testing.T) {
	productA := primitive.NewObjectID()
	missing := primitive.NewObjectID()

	tests := []struct {
		name      string
		productID primitive.ObjectID
		quantity  int
		wantItems int
		wantQty   int
	}{
		{"replaces quantity", productA, 7, 1, 7},
		{"clamps below one", productA, 0, 1, 1},
		{"missing product is a no-op", missing, 3, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.AddItem(newItem(productA, 10, 2))

			c.SetQuantity(tt.productID, tt.quantity)

			if len(c.Items) != tt.wantItems {
				t.Fatalf("expected %d items, got %d", tt.wantItems, len(c.Items))
			}
			if got := c.Items[0].Quantity; got != tt.wantQty {
				t.Errorf("expected quantity %d, got %d", tt.wantQty, got)
			}
		})
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()

	c := New()
	c.AddItem(newItem(productA, 10, 1))
	c.AddItem(newItem(productB, 15, 1))

	c.RemoveItem(productA)
	c.RemoveItem(productA)

	if len(c.Items) != 1 {
		t.Fatalf("expected 1 item after repeated removal, got %d", len(c.Items))
	}
	if c.Items[0].ProductID != productB {
		t.Error("expected the other item to survive removal")
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.AddItem(newItem(primitive.NewObjectID(), 10, 2))

	c.Clear()

	if !c.IsEmpty() {
		t.Error("expected cart to be empty after Clear")
	}
	if got := c.Subtotal(); got != 0 {
		t.Errorf("expected zero subtotal, got %v", got)
	}
}

func TestSubtotalIsOrderIndependent(t *testing.T) {
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()
	productC := primitive.NewObjectID()

	forward := New()
	forward.AddItem(newItem(productA, 10, 2))
	forward.AddItem(newItem(productB, 15, 1))
	forward.AddItem(newItem(productC, 3.5, 4))

	reverse := New()
	reverse.AddItem(newItem(productC, 3.5, 4))
	reverse.AddItem(newItem(productB, 15, 1))
	reverse.AddItem(newItem(productA, 10, 2))

	want := 10*2 + 15*1 + 3.5*4
	if got := forward.Subtotal(); got != want {
		t.Errorf("expected subtotal %v, got %v", want, got)
	}
	if forward.Subtotal() != reverse.Subtotal() {
		t.Error("expected subtotal to be independent of insertion order")
	}
}

func TestCount(t *testing.T) {
	c := New()
	if got := c.Count(); got != 0 {
		t.Errorf("expected empty cart count 0, got %d", got)
	}

	c.AddItem(newItem(primitive.NewObjectID(), 10, 2))
	c.AddItem(newItem(primitive.NewObjectID(), 15, 3))

	if got := c.Count(); got != 5 {
		t.Errorf("expected count 5, got %d", got)
	}
}
