package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"inventory-service/internal/model"
)

func TestUpsertLedgerPolicyAppendsNewDates(t *testing.T) {
	policy := UpsertLedgerPolicy{}

	entries, first := policy.Record(nil, "p1", 100, "2025-05-01")
	require.Len(t, entries, 1)
	require.NotEmpty(t, first.ID)
	require.Equal(t, 100.0, first.Price)

	entries, second := policy.Record(entries, "p1", 90, "2025-05-02")
	require.Len(t, entries, 2)
	require.NotEqual(t, first.ID, second.ID)
}

func TestUpsertLedgerPolicyReplacesSameDate(t *testing.T) {
	policy := UpsertLedgerPolicy{}

	entries, first := policy.Record(nil, "p1", 100, "2025-05-01")
	entries, second := policy.Record(entries, "p1", 80, "2025-05-01")

	require.Len(t, entries, 1)
	require.Equal(t, first.ID, second.ID, "same-date record keeps the original entry id")
	require.Equal(t, 80.0, entries[0].Price, "last write wins")
}

func TestUpsertLedgerPolicyScopedToProduct(t *testing.T) {
	policy := UpsertLedgerPolicy{}

	entries, _ := policy.Record(nil, "p1", 100, "2025-05-01")
	entries, _ = policy.Record(entries, "p2", 50, "2025-05-01")

	require.Len(t, entries, 2, "same date on another product must not upsert")
}

func TestAppendLedgerPolicyAlwaysAppends(t *testing.T) {
	policy := AppendLedgerPolicy{}

	entries, _ := policy.Record(nil, "p1", 100, "2025-05-01")
	entries, _ = policy.Record(entries, "p1", 80, "2025-05-01")

	require.Len(t, entries, 2)
}

func TestLatestPrice(t *testing.T) {
	entries := []model.PriceHistory{
		{ID: "a", ProductID: "p1", Price: 100, Date: "2025-05-01"},
		{ID: "b", ProductID: "p1", Price: 80, Date: "2025-05-03"},
		{ID: "c", ProductID: "p1", Price: 90, Date: "2025-05-02"},
		{ID: "d", ProductID: "p2", Price: 500, Date: "2025-06-01"},
	}

	price, ok := LatestPrice(entries, "p1")
	require.True(t, ok)
	require.Equal(t, 80.0, price, "max-date entry wins regardless of slice order")

	_, ok = LatestPrice(entries, "unknown")
	require.False(t, ok)
}

func TestHistorySortsAscendingWithoutMutatingInput(t *testing.T) {
	entries := []model.PriceHistory{
		{ID: "b", ProductID: "p1", Price: 80, Date: "2025-05-03"},
		{ID: "a", ProductID: "p1", Price: 100, Date: "2025-05-01"},
		{ID: "d", ProductID: "p2", Price: 500, Date: "2025-06-01"},
		{ID: "c", ProductID: "p1", Price: 90, Date: "2025-05-02"},
	}

	timeline := History(entries, "p1")
	require.Len(t, timeline, 3)
	require.Equal(t, []string{"2025-05-01", "2025-05-02", "2025-05-03"},
		[]string{timeline[0].Date, timeline[1].Date, timeline[2].Date})

	// Input order untouched.
	require.Equal(t, "b", entries[0].ID)

	require.Empty(t, History(entries, "unknown"))
}

func TestLedgerPolicyByName(t *testing.T) {
	require.IsType(t, AppendLedgerPolicy{}, LedgerPolicyByName("append"))
	require.IsType(t, UpsertLedgerPolicy{}, LedgerPolicyByName("upsert"))
	require.IsType(t, UpsertLedgerPolicy{}, LedgerPolicyByName(""))
}
