// internal/models/combination.go
package models

import "sort"

// Combination holds a representative image for an unordered set of
// 2 to 4 products. Identity of the set is the sorted product-id tuple;
// the remote store enforces no uniqueness, so callers compare keys
// before creating.
type Combination struct {
	ID         string   `json:"id"`
	ProductIDs []string `json:"product_ids"`
	MediaID    string   `json:"media_id"`
	ImageURL   string   `json:"image_url,omitempty"`
	Title      string   `json:"title,omitempty"`
}

const (
	MinCombinationProducts = 2
	MaxCombinationProducts = 4
)

// CombinationKey returns the order-independent identity of a product
// set. The input slice is not modified.
func CombinationKey(productIDs []string) []string {
	key := make([]string, len(productIDs))
	copy(key, productIDs)
	sort.Strings(key)
	return key
}

// SameProductSet reports whether two product-id sets are equal
// regardless of order.
func SameProductSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	ka, kb := CombinationKey(a), CombinationKey(b)
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}
