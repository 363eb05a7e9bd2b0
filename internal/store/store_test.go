package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"inventory-service/internal/catalog"
	"inventory-service/internal/model"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/prometheus"
)

func TestMain(m *testing.M) {
	// Store methods record operation durations; the collectors must
	// exist before any of them run.
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "storetest"}})
	os.Exit(m.Run())
}

var dbSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// Both stores must present identical semantics to the repository.
func forEachStore(t *testing.T, run func(t *testing.T, s catalog.Store)) {
	t.Run("memory", func(t *testing.T) {
		run(t, NewMemoryStore())
	})
	t.Run("gorm", func(t *testing.T) {
		run(t, NewGormStore(openTestDB(t)))
	})
}

func sampleProduct(id, code string) model.Product {
	return model.Product{
		ID:        id,
		Code:      code,
		Name:      "Ryzen 9",
		Unit:      "piece",
		Category:  "Processor",
		Quantity:  4,
		Price:     100,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestInsertAndLoad(t *testing.T) {
	forEachStore(t, func(t *testing.T, s catalog.Store) {
		ctx := context.Background()
		require.NoError(t, s.InsertProduct(ctx, sampleProduct("p1", "CP0001")))
		require.NoError(t, s.InsertOrUpdatePriceEntry(ctx, model.PriceHistory{
			ID: "e1", ProductID: "p1", Price: 100, Date: "2025-05-01",
		}))

		products, entries, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "CP0001", products[0].Code)
		require.Len(t, entries, 1)
		require.Equal(t, 100.0, entries[0].Price)
	})
}

func TestInsertDuplicateCode(t *testing.T) {
	forEachStore(t, func(t *testing.T, s catalog.Store) {
		ctx := context.Background()
		require.NoError(t, s.InsertProduct(ctx, sampleProduct("p1", "CP0001")))
		err := s.InsertProduct(ctx, sampleProduct("p2", "CP0001"))
		require.ErrorIs(t, err, catalog.ErrDuplicateCode)
	})
}

func TestMutateProduct(t *testing.T) {
	forEachStore(t, func(t *testing.T, s catalog.Store) {
		ctx := context.Background()
		require.NoError(t, s.InsertProduct(ctx, sampleProduct("p1", "CP0001")))

		require.NoError(t, s.MutateProduct(ctx, "p1", catalog.ProductPatch{
			Name: "Ryzen 9 7950X", Unit: "piece", Category: "Processor", Quantity: 0, Price: 0,
		}))

		products, _, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Equal(t, "Ryzen 9 7950X", products[0].Name)
		require.Zero(t, products[0].Quantity, "zero values must persist")
		require.Zero(t, products[0].Price)
		require.Equal(t, "CP0001", products[0].Code, "code is immutable through mutation")
	})
}

func TestMutateMissingProduct(t *testing.T) {
	forEachStore(t, func(t *testing.T, s catalog.Store) {
		err := s.MutateProduct(context.Background(), "missing", catalog.ProductPatch{Name: "x"})
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})
}

func TestPriceEntryUpsertOnDate(t *testing.T) {
	forEachStore(t, func(t *testing.T, s catalog.Store) {
		ctx := context.Background()
		require.NoError(t, s.InsertOrUpdatePriceEntry(ctx, model.PriceHistory{
			ID: "e1", ProductID: "p1", Price: 100, Date: "2025-05-01",
		}))
		require.NoError(t, s.InsertOrUpdatePriceEntry(ctx, model.PriceHistory{
			ID: "e2", ProductID: "p1", Price: 80, Date: "2025-05-01",
		}))

		_, entries, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1, "one row per (product, date)")
		require.Equal(t, 80.0, entries[0].Price)
	})
}

func TestRemoveProductAndCascade(t *testing.T) {
	forEachStore(t, func(t *testing.T, s catalog.Store) {
		ctx := context.Background()
		require.NoError(t, s.InsertProduct(ctx, sampleProduct("p1", "CP0001")))
		require.NoError(t, s.InsertOrUpdatePriceEntry(ctx, model.PriceHistory{
			ID: "e1", ProductID: "p1", Price: 100, Date: "2025-05-01",
		}))
		require.NoError(t, s.InsertOrUpdatePriceEntry(ctx, model.PriceHistory{
			ID: "e2", ProductID: "p1", Price: 90, Date: "2025-05-02",
		}))

		require.NoError(t, s.RemoveProduct(ctx, "p1"))
		require.NoError(t, s.RemovePriceEntries(ctx, "p1"))

		products, entries, err := s.LoadAll(ctx)
		require.NoError(t, err)
		require.Empty(t, products)
		require.Empty(t, entries)
	})
}

func TestRemoveMissingProductIsNoError(t *testing.T) {
	forEachStore(t, func(t *testing.T, s catalog.Store) {
		require.NoError(t, s.RemoveProduct(context.Background(), "missing"))
		require.NoError(t, s.RemovePriceEntries(context.Background(), "missing"))
	})
}
