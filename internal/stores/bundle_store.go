// internal/stores/bundle_store.go
package stores

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dario9661s/bundles-sub000/internal/codec"
	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

const (
	bundleMetaobjectType = "$app:bundle"

	// scanPageSize is the cursor page size used for full scans. The
	// remote store caps pages at 250.
	scanPageSize = 250
)

// BundleStore persists bundles as metaobject records. The backing store
// has no filter predicate or secondary index, so every list is a full
// cursor scan with in-memory filtering; acceptable for the tens to low
// hundreds of bundles a shop realistically defines, and isolated behind
// this type so a filtering backend can replace it.
type BundleStore struct {
	api MetaobjectAPI
	log *logrus.Entry
}

// ListResult is one window over the status-filtered collection.
type ListResult struct {
	Items   []models.Bundle `json:"items"`
	Total   int             `json:"total"`
	HasNext bool            `json:"has_next"`
}

func NewBundleStore(api MetaobjectAPI) *BundleStore {
	return &BundleStore{
		api: api,
		log: logrus.WithField("component", "bundle_store"),
	}
}

// EnsureSchema registers the bundle metaobject definition if missing.
// Idempotent and safe under concurrent callers.
func (s *BundleStore) EnsureSchema(ctx context.Context) error {
	return s.api.EnsureMetaobjectDefinition(ctx, shopify.MetaobjectDefinition{
		Type:      bundleMetaobjectType,
		Name:      "Bundle",
		FieldKeys: codec.BundleFieldKeys,
	})
}

// scanAll walks the entire collection cursor by cursor. A failure mid
// scan propagates rather than returning a silently partial list.
func (s *BundleStore) scanAll(ctx context.Context) ([]models.Bundle, error) {
	var bundles []models.Bundle
	cursor := ""

	for {
		nodes, hasNext, endCursor, err := s.api.ListMetaobjects(ctx, bundleMetaobjectType, scanPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("bundle scan failed: %w", err)
		}

		for i := range nodes {
			bundles = append(bundles, *codec.Decode(nodes[i].ID, nodes[i].Handle, nodes[i].Fields))
		}

		if !hasNext {
			return bundles, nil
		}
		cursor = endCursor
	}
}

// List performs a full scan, applies the status filter in memory, then
// windows the filtered set. Total counts filtered records, not the raw
// collection.
func (s *BundleStore) List(ctx context.Context, page, limit int, status models.BundleStatus) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	all, err := s.scanAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := all
	if status != "" {
		filtered = make([]models.Bundle, 0, len(all))
		for _, b := range all {
			if b.Status == status {
				filtered = append(filtered, b)
			}
		}
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return &ListResult{
		Items:   filtered[start:end],
		Total:   len(filtered),
		HasNext: end < len(filtered),
	}, nil
}

// ListAll returns every bundle with the given status. Used by the
// synchronizer to rebuild the snapshot from scratch.
func (s *BundleStore) ListAll(ctx context.Context, status models.BundleStatus) ([]models.Bundle, error) {
	all, err := s.scanAll(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}

	filtered := make([]models.Bundle, 0, len(all))
	for _, b := range all {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

// Get fetches a single bundle. Absence is (nil, nil), not an error.
func (s *BundleStore) Get(ctx context.Context, id string) (*models.Bundle, error) {
	obj, err := s.api.GetMetaobject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("bundle fetch failed: %w", err)
	}
	if obj == nil {
		return nil, nil
	}
	return codec.Decode(obj.ID, obj.Handle, obj.Fields), nil
}

// Create bootstraps the schema, writes the full field set and returns
// the decoded record carrying the store-assigned id and handle. Remote
// field validation errors surface verbatim.
func (s *BundleStore) Create(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	obj, userErrors, err := s.api.CreateMetaobject(ctx, bundleMetaobjectType, codec.EncodeBundle(bundle))
	if err != nil {
		return nil, err
	}
	if err := classifyUserErrors(userErrors); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("bundle create returned no record")
	}

	s.log.WithFields(logrus.Fields{"id": obj.ID, "title": bundle.Title}).Info("Bundle created")
	return codec.Decode(obj.ID, obj.Handle, obj.Fields), nil
}

// Update encodes only the fields present in the patch. The remote API
// does not distinguish a missing id from other update failures, so a
// pre-read existence check decides not-found instead of sniffing error
// text.
func (s *BundleStore) Update(ctx context.Context, id string, patch codec.BundlePatch) (*models.Bundle, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	fields := codec.Encode(patch)
	if len(fields) == 0 {
		return existing, nil
	}

	obj, userErrors, err := s.api.UpdateMetaobject(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if err := classifyUserErrors(userErrors); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("bundle update returned no record")
	}

	return codec.Decode(obj.ID, obj.Handle, obj.Fields), nil
}

// Delete removes the record, reporting success plus the raw remote
// error list.
func (s *BundleStore) Delete(ctx context.Context, id string) (bool, []shopify.UserError, error) {
	deleted, userErrors, err := s.api.DeleteMetaobject(ctx, id)
	if err != nil {
		return false, nil, err
	}
	if deleted {
		s.log.WithField("id", id).Info("Bundle deleted")
	}
	return deleted, userErrors, nil
}

// Duplicate deep-copies a bundle under a new title and status. Steps
// get fresh ids so the copy's identity is fully independent of the
// source; combination references are intentionally not carried over.
func (s *BundleStore) Duplicate(ctx context.Context, id, newTitle string, newStatus models.BundleStatus) (*models.Bundle, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrNotFound
	}

	clone := *source
	clone.ID = ""
	clone.Handle = ""
	clone.Title = newTitle
	clone.Status = newStatus
	clone.CombinationImageIDs = nil

	clone.Steps = make([]models.BundleStep, len(source.Steps))
	for i, step := range source.Steps {
		copied := step
		copied.ID = models.NewID()
		copied.Products = make([]models.BundleProduct, len(step.Products))
		copy(copied.Products, step.Products)
		clone.Steps[i] = copied
	}

	return s.Create(ctx, &clone)
}
