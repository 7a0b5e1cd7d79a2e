// Package cart implements the client-local shopping cart: a mutable
// collection of line items keyed by sticker id, persisted through a Persister
// on every mutation and rehydrated by an explicit Hydrate call.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"calcosnqn/internal/domain"

	"github.com/google/uuid"
)

// StorageKey is the fixed namespace key the serialized cart lives under.
const StorageKey = "calcosnqn-cart"

// Item is one product entry in the cart. Everything except Quantity is a
// snapshot of the sticker at add-time; MaxStock is the stock at that moment
// and is never reconciled with live stock afterwards.
type Item struct {
	ID          uuid.UUID          `json:"id"`
	ModelNumber string             `json:"model_number"`
	NameES      string             `json:"name_es"`
	NameEN      string             `json:"name_en"`
	Slug        string             `json:"slug"`
	ProductType domain.ProductType `json:"product_type"`
	BaseType    *domain.BaseType   `json:"base_type"`
	PriceARS    int64              `json:"price_ars"`
	ImageURL    *string            `json:"image_url"`
	Quantity    int                `json:"quantity"`
	MaxStock    int                `json:"max_stock"`
}

// Persister stores the serialized cart under a namespace key.
type Persister interface {
	Save(key string, data []byte) error
	Load(key string) ([]byte, error)
}

// Store holds the cart state. Persistence is a side effect of every mutation;
// hydration is deferred until Hydrate is called so that a freshly constructed
// store always starts from the same empty state the server rendered with.
type Store struct {
	mu        sync.Mutex
	items     []Item
	persister Persister
}

// NewStore creates an empty cart backed by p. It does not load persisted
// state; call Hydrate for that.
func NewStore(p Persister) *Store {
	return &Store{persister: p}
}

// Hydrate replaces the cart contents with the persisted collection, if any.
// A missing or empty record leaves the cart empty.
func (s *Store) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.persister.Load(StorageKey)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if len(data) == 0 {
		s.items = nil
		return nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to decode cart: %w", err)
	}
	s.items = items
	return nil
}

// AddItem inserts a new line with quantity 1, or increments the existing line
// for the same sticker by 1 clamped to that line's max stock.
func (s *Store) AddItem(candidate Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == candidate.ID {
			s.items[i].Quantity = min(s.items[i].Quantity+1, s.items[i].MaxStock)
			return s.persist()
		}
	}

	candidate.Quantity = 1
	s.items = append(s.items, candidate)
	return s.persist()
}

// RemoveItem deletes the line for id. Removing an absent id is a no-op.
func (s *Store) RemoveItem(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return s.persist()
}

// UpdateQuantity sets the quantity for id, clamped to the line's max stock.
// A quantity of zero or less removes the line. Absent ids are a no-op.
func (s *Store) UpdateQuantity(id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = min(quantity, s.items[i].MaxStock)
			break
		}
	}
	return s.persist()
}

// Clear empties the cart. Invoked after a successful checkout hand-off.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persist()
}

// Items returns a copy of the current line items.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of unit price times quantity across all lines.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, item := range s.items {
		total += item.PriceARS * int64(item.Quantity)
	}
	return total
}

// persist writes the current collection. Callers hold the lock.
func (s *Store) persist() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.persister.Save(StorageKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
