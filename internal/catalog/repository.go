package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"inventory-service/internal/model"
)

// Draft carries the caller-supplied fields of a product about to be
// created. ID, code and creation time are assigned by the repository.
type Draft struct {
	Name     string
	Unit     string
	Category string
	Quantity int
	Price    float64
}

// Repository owns the in-memory product collection and its price
// history, and keeps both consistent with the Store across create,
// update and delete. Writes go to the store first; the in-memory state
// changes only after the store confirmed, so a failed persistence call
// leaves the repository exactly as it was.
type Repository struct {
	mu       sync.Mutex
	store    Store
	code     CodePolicy
	ledger   LedgerPolicy
	now      func() time.Time
	products []model.Product
	entries  []model.PriceHistory
}

// NewRepository wires a repository with its policies. The zero clock
// defaults to time.Now.
func NewRepository(store Store, code CodePolicy, ledger LedgerPolicy) *Repository {
	return &Repository{
		store:  store,
		code:   code,
		ledger: ledger,
		now:    time.Now,
	}
}

// WithClock overrides the repository clock. Intended for tests that
// need deterministic effective dates.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// Load replaces the in-memory snapshot with the store's contents.
func (r *Repository) Load(ctx context.Context) error {
	products, entries, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	r.entries = entries
	return nil
}

// Create assigns an id and a generated code, persists the product and
// its seed price entry dated today, then admits it to the snapshot.
func (r *Repository) Create(ctx context.Context, draft Draft) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := r.today()
	product := model.Product{
		ID:        uuid.New().String(),
		Code:      r.code.Next(r.products, draft.Category),
		Name:      draft.Name,
		Unit:      draft.Unit,
		Category:  draft.Category,
		Quantity:  draft.Quantity,
		Price:     draft.Price,
		CreatedAt: r.now(),
	}

	if err := r.store.InsertProduct(ctx, product); err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	seed := model.PriceHistory{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Price:     draft.Price,
		Date:      today,
	}
	if err := r.store.InsertOrUpdatePriceEntry(ctx, seed); err != nil {
		return model.Product{}, fmt.Errorf("seed price history: %w", err)
	}

	r.products = append(r.products, product)
	r.entries = append(r.entries, seed)
	return product, nil
}

// Update persists the product's mutable fields and, when the price
// differs from the one currently on record, lands exactly one ledger
// entry for today via the configured policy. The id must reference an
// active product; code and creation time never change here.
func (r *Repository) Update(ctx context.Context, product model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(product.ID)
	if idx < 0 {
		return model.Product{}, ErrNotFound
	}
	existing := r.products[idx]

	patch := ProductPatch{
		Name:     product.Name,
		Unit:     product.Unit,
		Category: product.Category,
		Quantity: product.Quantity,
		Price:    product.Price,
	}
	if err := r.store.MutateProduct(ctx, product.ID, patch); err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	priceChanged := existing.Price != product.Price
	var entries []model.PriceHistory
	var entry model.PriceHistory
	if priceChanged {
		entries, entry = r.ledger.Record(cloneEntries(r.entries), product.ID, product.Price, r.today())
		if err := r.store.InsertOrUpdatePriceEntry(ctx, entry); err != nil {
			return model.Product{}, fmt.Errorf("record price: %w", err)
		}
	}

	updated := existing
	updated.Name = patch.Name
	updated.Unit = patch.Unit
	updated.Category = patch.Category
	updated.Quantity = patch.Quantity
	updated.Price = patch.Price

	r.products[idx] = updated
	if priceChanged {
		r.entries = entries
	}
	return updated, nil
}

// Delete removes the product and all its price history. A missing id
// is a silent no-op by convention. The cascade is explicit: the
// repository removes the ledger rows itself rather than trusting a
// database constraint.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}

	if err := r.store.RemoveProduct(ctx, id); err != nil {
		return fmt.Errorf("remove product: %w", err)
	}
	if err := r.store.RemovePriceEntries(ctx, id); err != nil {
		return fmt.Errorf("remove price history: %w", err)
	}

	r.products = append(r.products[:idx], r.products[idx+1:]...)
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.ProductID != id {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

// Products returns the current listing in insertion order.
func (r *Repository) Products() []model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Product(nil), r.products...)
}

// Get returns the active product with the given id.
func (r *Repository) Get(id string) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return model.Product{}, ErrNotFound
	}
	return r.products[idx], nil
}

// Search filters the listing; a blank query returns everything.
func (r *Repository) Search(query string) []model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SearchProducts(append([]model.Product(nil), r.products...), query)
}

// PriceHistoryOf returns the product's price timeline sorted ascending
// by date. An unknown or history-less id yields an empty timeline.
func (r *Repository) PriceHistoryOf(id string) []model.PriceHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return History(r.entries, id)
}

// LatestPriceOf resolves the product's effective price: the newest
// ledger entry when one exists, else the product's own Price field.
func (r *Repository) LatestPriceOf(id string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return 0, ErrNotFound
	}
	if price, ok := LatestPrice(r.entries, id); ok {
		return price, nil
	}
	return r.products[idx].Price, nil
}

func (r *Repository) indexOf(id string) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) today() string {
	return r.now().Format(model.DateLayout)
}

func cloneEntries(entries []model.PriceHistory) []model.PriceHistory {
	return append([]model.PriceHistory(nil), entries...)
}
