// internal/codec/combination.go
package codec

import (
	"encoding/json"

	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

// Field keys of the combination metaobject.
const (
	CombinationFieldProducts = "products"
	CombinationFieldMediaID  = "media_id"
	CombinationFieldImageURL = "image_url"
	CombinationFieldTitle    = "title"
)

var CombinationFieldKeys = []string{
	CombinationFieldProducts,
	CombinationFieldMediaID,
	CombinationFieldImageURL,
	CombinationFieldTitle,
}

// EncodeCombination stores the product set sorted so the content
// address of the record is stable regardless of the order products were
// picked in.
func EncodeCombination(c *models.Combination) []shopify.MetaobjectField {
	blob, _ := json.Marshal(models.CombinationKey(c.ProductIDs))
	fields := []shopify.MetaobjectField{
		{Key: CombinationFieldProducts, Value: string(blob)},
		{Key: CombinationFieldMediaID, Value: c.MediaID},
		{Key: CombinationFieldImageURL, Value: c.ImageURL},
	}
	if c.Title != "" {
		fields = append(fields, shopify.MetaobjectField{Key: CombinationFieldTitle, Value: c.Title})
	}
	return fields
}

// DecodeCombination tolerates malformed product blobs by yielding an
// empty set, which can never match a lookup key.
func DecodeCombination(id string, fields []shopify.MetaobjectField) *models.Combination {
	c := &models.Combination{ID: id, ProductIDs: []string{}}

	for _, f := range fields {
		switch f.Key {
		case CombinationFieldProducts:
			var ids []string
			if err := json.Unmarshal([]byte(f.Value), &ids); err == nil {
				c.ProductIDs = ids
			}
		case CombinationFieldMediaID:
			c.MediaID = f.Value
		case CombinationFieldImageURL:
			c.ImageURL = f.Value
		case CombinationFieldTitle:
			c.Title = f.Value
		}
	}

	return c
}
