// internal/services/sync_service_test.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dario9661s/bundles-sub000/internal/config"
	"github.com/dario9661s/bundles-sub000/internal/models"
)

type fakeLister struct {
	bundles []models.Bundle
	err     error
}

func (f *fakeLister) ListAll(ctx context.Context, status models.BundleStatus) ([]models.Bundle, error) {
	if f.err != nil {
		return nil, f.err
	}
	filtered := make([]models.Bundle, 0, len(f.bundles))
	for _, b := range f.bundles {
		if status == "" || b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

type fakeMetafieldAPI struct {
	ownerErr error
	setErr   error

	writes []string
}

func (f *fakeMetafieldAPI) GetCartTransformID(ctx context.Context) (string, error) {
	if f.ownerErr != nil {
		return "", f.ownerErr
	}
	return "gid://fake/CartTransform/1", nil
}

func (f *fakeMetafieldAPI) SetMetafield(ctx context.Context, ownerID, namespace, key, valueType, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.writes = append(f.writes, value)
	return nil
}

func syncBundles() []models.Bundle {
	return []models.Bundle{
		{
			ID:            "gid://fake/Metaobject/2",
			Title:         "Second",
			Status:        models.BundleStatusActive,
			DiscountType:  models.DiscountTypeFixed,
			DiscountValue: 5,
			Steps: []models.BundleStep{
				{ID: "s2", Position: 2, Products: []models.BundleProduct{{ID: "p3", Position: 1}}},
				{ID: "s1", Position: 1, Products: []models.BundleProduct{
					{ID: "p2", Position: 2},
					{ID: "p1", Position: 1},
				}},
			},
		},
		{
			ID:            "gid://fake/Metaobject/1",
			Title:         "First",
			Status:        models.BundleStatusActive,
			DiscountType:  models.DiscountTypePercentage,
			DiscountValue: 10,
			Steps:         []models.BundleStep{{ID: "s3", Position: 1, Products: []models.BundleProduct{{ID: "p9", Position: 1}}}},
		},
	}
}

func newTestSyncService(lister BundleLister, api MetafieldAPI) *SyncService {
	return NewSyncService(lister, api, nil, "test-shop.myshopify.com", config.SyncConfig{
		MetafieldNamespace: "bundle_engine",
		MetafieldKey:       "active_bundles",
	})
}

func TestSnapshotIsDeterministicallyOrdered(t *testing.T) {
	snapshot := BuildCartTransformSnapshot(syncBundles())

	require.Len(t, snapshot.Bundles, 2)
	assert.Equal(t, "gid://fake/Metaobject/1", snapshot.Bundles[0].ID)
	assert.Equal(t, "gid://fake/Metaobject/2", snapshot.Bundles[1].ID)

	second := snapshot.Bundles[1]
	require.Len(t, second.Steps, 2)
	assert.Equal(t, "s1", second.Steps[0].ID)
	assert.Equal(t, "s2", second.Steps[1].ID)
	assert.Equal(t, "p1", second.Steps[0].Products[0].ID)
	assert.Equal(t, "p2", second.Steps[0].Products[1].ID)
}

func TestSnapshotIsPure(t *testing.T) {
	bundles := syncBundles()

	first, err := json.Marshal(BuildCartTransformSnapshot(bundles))
	require.NoError(t, err)
	second, err := json.Marshal(BuildCartTransformSnapshot(bundles))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Building a snapshot must not reorder the caller's slices.
	assert.Equal(t, "s2", bundles[0].Steps[0].ID)
	assert.Equal(t, "p2", bundles[0].Steps[1].Products[0].ID)
}

func TestRepeatedSyncWritesIdenticalDocuments(t *testing.T) {
	api := &fakeMetafieldAPI{}
	s := newTestSyncService(&fakeLister{bundles: syncBundles()}, api)

	require.NoError(t, s.OnBundleChanged(context.Background(), models.SyncTriggerUpdate))
	require.NoError(t, s.OnBundleChanged(context.Background(), models.SyncTriggerManual))

	require.Len(t, api.writes, 2)
	assert.Equal(t, api.writes[0], api.writes[1])
}

func TestSyncProjectsOnlyActiveBundles(t *testing.T) {
	bundles := append(syncBundles(), models.Bundle{
		ID:     "gid://fake/Metaobject/3",
		Title:  "Draft",
		Status: models.BundleStatusDraft,
	})
	api := &fakeMetafieldAPI{}
	s := newTestSyncService(&fakeLister{bundles: bundles}, api)

	require.NoError(t, s.OnBundleChanged(context.Background(), models.SyncTriggerCreate))

	require.Len(t, api.writes, 1)
	var snapshot models.CartTransformSnapshot
	require.NoError(t, json.Unmarshal([]byte(api.writes[0]), &snapshot))
	assert.Len(t, snapshot.Bundles, 2)
}

func TestSyncEmptyCollectionWritesEmptySnapshot(t *testing.T) {
	api := &fakeMetafieldAPI{}
	s := newTestSyncService(&fakeLister{}, api)

	require.NoError(t, s.OnBundleChanged(context.Background(), models.SyncTriggerDelete))

	require.Len(t, api.writes, 1)
	var snapshot models.CartTransformSnapshot
	require.NoError(t, json.Unmarshal([]byte(api.writes[0]), &snapshot))
	assert.NotNil(t, snapshot.Bundles)
	assert.Empty(t, snapshot.Bundles)
}

func TestSyncReportsListFailure(t *testing.T) {
	api := &fakeMetafieldAPI{}
	s := newTestSyncService(&fakeLister{err: errors.New("scan failed")}, api)

	err := s.OnBundleChanged(context.Background(), models.SyncTriggerUpdate)
	assert.Error(t, err)
	assert.Empty(t, api.writes)
}

func TestSyncReportsWriteFailure(t *testing.T) {
	api := &fakeMetafieldAPI{setErr: errors.New("metafield write rejected")}
	s := newTestSyncService(&fakeLister{bundles: syncBundles()}, api)

	err := s.OnBundleChanged(context.Background(), models.SyncTriggerUpdate)
	assert.Error(t, err)
}
