package catalog

import (
	"strings"

	"inventory-service/internal/model"
)

// SearchProducts filters products by a case-insensitive substring
// match against name, code, or category. A blank query returns the
// input unfiltered; matches keep their original relative order.
func SearchProducts(products []model.Product, query string) []model.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}

	q := strings.ToLower(query)
	var matched []model.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Code), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			matched = append(matched, p)
		}
	}
	if matched == nil {
		return []model.Product{}
	}
	return matched
}
