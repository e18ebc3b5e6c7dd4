// internal/models/snapshot.go
package models

// CartTransformSnapshot is the denormalized document the checkout-time
// cart transform function reads. It is a materialized view over the
// active bundles and is fully regenerated on every bundle mutation,
// never patched in place.
type CartTransformSnapshot struct {
	Bundles []SnapshotBundle `json:"bundles"`
}

type SnapshotBundle struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	DiscountType  DiscountType   `json:"discountType"`
	DiscountValue float64        `json:"discountValue"`
	Steps         []SnapshotStep `json:"steps"`
}

type SnapshotStep struct {
	ID       string            `json:"id"`
	Products []SnapshotProduct `json:"products"`
}

type SnapshotProduct struct {
	ID string `json:"id"`
}
