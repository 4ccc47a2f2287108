package cart

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryStoreLoadMissingReturnsEmptyCart(t *testing.T) {
	store := NewMemoryStore()

	c, err := store.Load(context.Background(), "user:unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsEmpty() {
		t.Error("expected a fresh empty cart")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	key := "session:abc"

	c := New()
	c.AddItem(newItem(primitive.NewObjectID(), 10, 2))
	if err := store.Save(context.Background(), key, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the saved cart must not leak into the store.
	c.Clear()

	loaded, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Count() != 2 {
		t.Errorf("expected stored count 2, got %d", loaded.Count())
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	key := "user:1"

	c := New()
	c.AddItem(newItem(primitive.NewObjectID(), 10, 1))
	if err := store.Save(context.Background(), key, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Clear(context.Background(), key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded.IsEmpty() {
		t.Error("expected cart to be empty after Clear")
	}
}
