package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory-service/internal/catalog"
	"inventory-service/internal/model"
	"inventory-service/prometheus"
)

// GormStore persists the catalog through gorm, backed by postgres in
// hosted mode or sqlite in demo mode. It implements catalog.Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// LoadAll returns every product and price entry. Products come back in
// code order, entries in date order, matching what the UI listing
// expects on first load.
func (s *GormStore) LoadAll(ctx context.Context) ([]model.Product, []model.PriceHistory, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var products []model.Product
	if err := s.db.WithContext(ctx).Order("code").Find(&products).Error; err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}

	var entries []model.PriceHistory
	if err := s.db.WithContext(ctx).Order("date").Find(&entries).Error; err != nil {
		return nil, nil, fmt.Errorf("load price history: %w", err)
	}
	return products, entries, nil
}

func (s *GormStore) InsertProduct(ctx context.Context, product model.Product) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	err := s.db.WithContext(ctx).Create(&product).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return catalog.ErrDuplicateCode
	}
	return err
}

func (s *GormStore) MutateProduct(ctx context.Context, id string, patch catalog.ProductPatch) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	// Map form so zero values (quantity 0, price 0) still persist.
	result := s.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":     patch.Name,
		"unit":     patch.Unit,
		"category": patch.Category,
		"quantity": patch.Quantity,
		"price":    patch.Price,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *GormStore) RemoveProduct(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return s.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id).Error
}

// InsertOrUpdatePriceEntry upserts keyed on (product_id, date), so a
// second price change on the same calendar date overwrites the first
// row instead of violating the unique index.
func (s *GormStore) InsertOrUpdatePriceEntry(ctx context.Context, entry model.PriceHistory) error {
	defer prometheus.TrackDBOperation("upsert")(time.Now())

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"price"}),
	}).Create(&entry).Error
}

func (s *GormStore) RemovePriceEntries(ctx context.Context, productID string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return s.db.WithContext(ctx).Delete(&model.PriceHistory{}, "product_id = ?", productID).Error
}
