// internal/stores/combination_store.go
package stores

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dario9661s/bundles-sub000/internal/codec"
	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

const combinationMetaobjectType = "$app:combination"

// CombinationStore persists combination-image records content-addressed
// by their sorted product-id set. The remote store has no uniqueness
// constraint; set identity is enforced here by comparing keys, so two
// records with the same set can coexist if a caller skips the check.
type CombinationStore struct {
	api MetaobjectAPI
	log *logrus.Entry
}

func NewCombinationStore(api MetaobjectAPI) *CombinationStore {
	return &CombinationStore{
		api: api,
		log: logrus.WithField("component", "combination_store"),
	}
}

func (s *CombinationStore) EnsureSchema(ctx context.Context) error {
	return s.api.EnsureMetaobjectDefinition(ctx, shopify.MetaobjectDefinition{
		Type:      combinationMetaobjectType,
		Name:      "Combination Image",
		FieldKeys: codec.CombinationFieldKeys,
	})
}

func (s *CombinationStore) scanAll(ctx context.Context) ([]models.Combination, error) {
	var combinations []models.Combination
	cursor := ""

	for {
		nodes, hasNext, endCursor, err := s.api.ListMetaobjects(ctx, combinationMetaobjectType, scanPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("combination scan failed: %w", err)
		}

		for i := range nodes {
			combinations = append(combinations, *codec.DecodeCombination(nodes[i].ID, nodes[i].Fields))
		}

		if !hasNext {
			return combinations, nil
		}
		cursor = endCursor
	}
}

// FindByProductSet returns the first combination whose product set
// equals the given one regardless of order, or nil when none matches.
func (s *CombinationStore) FindByProductSet(ctx context.Context, productIDs []string) (*models.Combination, error) {
	all, err := s.scanAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if models.SameProductSet(all[i].ProductIDs, productIDs) {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Create writes a combination record. The caller has already resolved
// the media id and image URL through the upload pipeline.
func (s *CombinationStore) Create(ctx context.Context, combination *models.Combination) (*models.Combination, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	obj, userErrors, err := s.api.CreateMetaobject(ctx, combinationMetaobjectType, codec.EncodeCombination(combination))
	if err != nil {
		return nil, err
	}
	if err := classifyUserErrors(userErrors); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("combination create returned no record")
	}

	s.log.WithField("id", obj.ID).Info("Combination created")
	return codec.DecodeCombination(obj.ID, obj.Fields), nil
}

// Update replaces the given fields on an existing combination.
func (s *CombinationStore) Update(ctx context.Context, id string, fields []shopify.MetaobjectField) (*models.Combination, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	obj, userErrors, err := s.api.UpdateMetaobject(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if err := classifyUserErrors(userErrors); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("combination update returned no record")
	}

	return codec.DecodeCombination(obj.ID, obj.Fields), nil
}

func (s *CombinationStore) Get(ctx context.Context, id string) (*models.Combination, error) {
	obj, err := s.api.GetMetaobject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("combination fetch failed: %w", err)
	}
	if obj == nil {
		return nil, nil
	}
	return codec.DecodeCombination(obj.ID, obj.Fields), nil
}

// Delete removes the record only. The underlying media asset is left in
// place; orphaned media cleanup is out of scope.
func (s *CombinationStore) Delete(ctx context.Context, id string) (bool, []shopify.UserError, error) {
	return s.api.DeleteMetaobject(ctx, id)
}

func (s *CombinationStore) List(ctx context.Context) ([]models.Combination, error) {
	return s.scanAll(ctx)
}

// ListByIDs resolves a batch of combinations one record at a time. Ids
// absent from the store are skipped rather than failing the batch.
func (s *CombinationStore) ListByIDs(ctx context.Context, ids []string) ([]models.Combination, error) {
	combinations := make([]models.Combination, 0, len(ids))
	for _, id := range ids {
		c, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			combinations = append(combinations, *c)
		}
	}
	return combinations, nil
}
