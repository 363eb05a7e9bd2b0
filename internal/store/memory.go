package store

import (
	"context"
	"sync"

	"inventory-service/internal/catalog"
	"inventory-service/internal/model"
)

// MemoryStore keeps the catalog in process memory. It backs demo mode,
// where nothing outlives the session, and doubles as the store for
// tests that don't want a database.
type MemoryStore struct {
	mu       sync.Mutex
	products []model.Product
	entries  []model.PriceHistory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadAll(_ context.Context) ([]model.Product, []model.PriceHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Product(nil), s.products...),
		append([]model.PriceHistory(nil), s.entries...), nil
}

func (s *MemoryStore) InsertProduct(_ context.Context, product model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Code == product.Code {
			return catalog.ErrDuplicateCode
		}
	}
	s.products = append(s.products, product)
	return nil
}

func (s *MemoryStore) MutateProduct(_ context.Context, id string, patch catalog.ProductPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			p.Name = patch.Name
			p.Unit = patch.Unit
			p.Category = patch.Category
			p.Quantity = patch.Quantity
			p.Price = patch.Price
			s.products[i] = p
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (s *MemoryStore) RemoveProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) InsertOrUpdatePriceEntry(_ context.Context, entry model.PriceHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ProductID == entry.ProductID && e.Date == entry.Date {
			s.entries[i].Price = entry.Price
			return nil
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) RemovePriceEntries(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}
