package catalog

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"inventory-service/internal/model"
)

// LedgerPolicy decides how a price change lands in the history: the
// current policy replaces the entry for the same calendar date, the
// superseded one appended unconditionally. Selected once at
// construction, never mixed.
type LedgerPolicy interface {
	Record(entries []model.PriceHistory, productID string, price float64, date string) ([]model.PriceHistory, model.PriceHistory)
}

// LedgerPolicyByName resolves a configured policy name. Unknown names
// fall back to upsert-on-date.
func LedgerPolicyByName(name string) LedgerPolicy {
	switch strings.ToLower(name) {
	case "append":
		return AppendLedgerPolicy{}
	default:
		return UpsertLedgerPolicy{}
	}
}

// UpsertLedgerPolicy keeps at most one entry per (product, calendar
// date): a second price change on the same date overwrites the first,
// so the last write of the day wins.
type UpsertLedgerPolicy struct{}

func (UpsertLedgerPolicy) Record(entries []model.PriceHistory, productID string, price float64, date string) ([]model.PriceHistory, model.PriceHistory) {
	for i, e := range entries {
		if e.ProductID == productID && e.Date == date {
			entries[i].Price = price
			return entries, entries[i]
		}
	}
	entry := model.PriceHistory{
		ID:        uuid.New().String(),
		ProductID: productID,
		Price:     price,
		Date:      date,
	}
	return append(entries, entry), entry
}

// AppendLedgerPolicy is the earlier revision of the ledger: every
// price change appends, so a product can accumulate several entries
// for the same date. Kept selectable for data recorded under that
// scheme; new deployments use UpsertLedgerPolicy.
type AppendLedgerPolicy struct{}

func (AppendLedgerPolicy) Record(entries []model.PriceHistory, productID string, price float64, date string) ([]model.PriceHistory, model.PriceHistory) {
	entry := model.PriceHistory{
		ID:        uuid.New().String(),
		ProductID: productID,
		Price:     price,
		Date:      date,
	}
	return append(entries, entry), entry
}

// LatestPrice returns the price of the max-date entry for the product.
// The second return is false when the product has no recorded history;
// callers fall back to the product's own Price field, which is treated
// as authoritative with the ledger as a derived log.
func LatestPrice(entries []model.PriceHistory, productID string) (float64, bool) {
	found := false
	var latest model.PriceHistory
	for _, e := range entries {
		if e.ProductID != productID {
			continue
		}
		if !found || e.Date > latest.Date {
			latest = e
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return latest.Price, true
}

// History returns the product's price timeline sorted ascending by
// date. The input slice is never modified.
func History(entries []model.PriceHistory, productID string) []model.PriceHistory {
	var timeline []model.PriceHistory
	for _, e := range entries {
		if e.ProductID == productID {
			timeline = append(timeline, e)
		}
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Date < timeline[j].Date
	})
	return timeline
}
