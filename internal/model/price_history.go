package model

// DateLayout is the calendar-granular format used for price effective
// dates. Two price changes on the same calendar date collapse into a
// single history entry.
const DateLayout = "2006-01-02"

// PriceHistory is one dated price record for a product. Entries for a
// product ordered by Date ascending form its price timeline; the last
// entry is authoritative for the product's current price. Entries are
// removed together with their product.
type PriceHistory struct {
	ID        string  `json:"id" gorm:"type:varchar(36);primaryKey"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36);index;uniqueIndex:idx_product_date;not null"`
	Price     float64 `json:"price" gorm:"not null"`
	Date      string  `json:"date" gorm:"type:varchar(10);uniqueIndex:idx_product_date;not null"`
}
