// internal/stores/bundle_store_test.go
package stores

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dario9661s/bundles-sub000/internal/codec"
	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

// fakeMetaobjectAPI is an in-memory metaobject store with real cursor
// pagination, so the full-scan paths exercise the same traversal they
// run against the remote API.
type fakeMetaobjectAPI struct {
	objects     []shopify.Metaobject
	definitions map[string]bool
	nextID      int
	pageSize    int // overrides the requested page size when > 0

	failList   error
	failGet    error
	userErrors []shopify.UserError
}

func newFakeMetaobjectAPI() *fakeMetaobjectAPI {
	return &fakeMetaobjectAPI{definitions: map[string]bool{}}
}

func (f *fakeMetaobjectAPI) EnsureMetaobjectDefinition(ctx context.Context, def shopify.MetaobjectDefinition) error {
	f.definitions[def.Type] = true
	return nil
}

func (f *fakeMetaobjectAPI) CreateMetaobject(ctx context.Context, mtype string, fields []shopify.MetaobjectField) (*shopify.Metaobject, []shopify.UserError, error) {
	if len(f.userErrors) > 0 {
		return nil, f.userErrors, nil
	}

	f.nextID++
	obj := shopify.Metaobject{
		ID:     fmt.Sprintf("gid://fake/Metaobject/%d", f.nextID),
		Handle: "handle-" + strconv.Itoa(f.nextID),
		Type:   mtype,
		Fields: fields,
	}
	f.objects = append(f.objects, obj)
	return &obj, nil, nil
}

func (f *fakeMetaobjectAPI) UpdateMetaobject(ctx context.Context, id string, fields []shopify.MetaobjectField) (*shopify.Metaobject, []shopify.UserError, error) {
	if len(f.userErrors) > 0 {
		return nil, f.userErrors, nil
	}

	for i := range f.objects {
		if f.objects[i].ID != id {
			continue
		}
		for _, nf := range fields {
			replaced := false
			for j := range f.objects[i].Fields {
				if f.objects[i].Fields[j].Key == nf.Key {
					f.objects[i].Fields[j].Value = nf.Value
					replaced = true
					break
				}
			}
			if !replaced {
				f.objects[i].Fields = append(f.objects[i].Fields, nf)
			}
		}
		obj := f.objects[i]
		return &obj, nil, nil
	}
	return nil, []shopify.UserError{{Message: "Metaobject does not exist"}}, nil
}

func (f *fakeMetaobjectAPI) DeleteMetaobject(ctx context.Context, id string) (bool, []shopify.UserError, error) {
	for i := range f.objects {
		if f.objects[i].ID == id {
			f.objects = append(f.objects[:i], f.objects[i+1:]...)
			return true, nil, nil
		}
	}
	return false, nil, nil
}

func (f *fakeMetaobjectAPI) GetMetaobject(ctx context.Context, id string) (*shopify.Metaobject, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	for i := range f.objects {
		if f.objects[i].ID == id {
			obj := f.objects[i]
			return &obj, nil
		}
	}
	return nil, nil
}

func (f *fakeMetaobjectAPI) ListMetaobjects(ctx context.Context, mtype string, first int, after string) ([]shopify.Metaobject, bool, string, error) {
	if f.failList != nil {
		return nil, false, "", f.failList
	}

	var typed []shopify.Metaobject
	for _, obj := range f.objects {
		if obj.Type == mtype {
			typed = append(typed, obj)
		}
	}

	start := 0
	if after != "" {
		start, _ = strconv.Atoi(after)
	}
	if f.pageSize > 0 && f.pageSize < first {
		first = f.pageSize
	}

	end := start + first
	if end > len(typed) {
		end = len(typed)
	}
	if start > len(typed) {
		start = len(typed)
	}

	return typed[start:end], end < len(typed), strconv.Itoa(end), nil
}

func seedBundles(t *testing.T, store *BundleStore, status models.BundleStatus, count int) []models.Bundle {
	t.Helper()
	created := make([]models.Bundle, 0, count)
	for i := 0; i < count; i++ {
		b, err := store.Create(context.Background(), &models.Bundle{
			Title:          fmt.Sprintf("%s bundle %02d", status, i),
			Status:         status,
			DiscountType:   models.DiscountTypePercentage,
			DiscountValue:  10,
			LayoutType:     models.LayoutTypeGrid,
			MobileColumns:  2,
			DesktopColumns: 4,
			LayoutSettings: models.DefaultLayoutSettings(models.LayoutTypeGrid),
			Steps: []models.BundleStep{{
				ID:            models.NewID(),
				Title:         "Step",
				Position:      1,
				MinSelections: 1,
				SelectionType: models.SelectionTypeProduct,
				Products:      []models.BundleProduct{{ID: "p1", Position: 1}},
			}},
		})
		require.NoError(t, err)
		created = append(created, *b)
	}
	return created
}

func TestListPaginatesFilteredCollection(t *testing.T) {
	api := newFakeMetaobjectAPI()
	api.pageSize = 4 // force multi-page scans
	store := NewBundleStore(api)

	seedBundles(t, store, models.BundleStatusActive, 12)
	seedBundles(t, store, models.BundleStatusDraft, 3)

	page2, err := store.List(context.Background(), 2, 5, models.BundleStatusActive)
	require.NoError(t, err)
	assert.Equal(t, 12, page2.Total)
	assert.Len(t, page2.Items, 5)
	assert.True(t, page2.HasNext)

	page3, err := store.List(context.Background(), 3, 5, models.BundleStatusActive)
	require.NoError(t, err)
	assert.Len(t, page3.Items, 2)
	assert.False(t, page3.HasNext)

	for _, b := range append(page2.Items, page3.Items...) {
		assert.Equal(t, models.BundleStatusActive, b.Status)
	}
}

func TestListWindowBeyondCollectionIsEmpty(t *testing.T) {
	api := newFakeMetaobjectAPI()
	store := NewBundleStore(api)
	seedBundles(t, store, models.BundleStatusActive, 3)

	result, err := store.List(context.Background(), 5, 10, "")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, 3, result.Total)
	assert.False(t, result.HasNext)
}

func TestListPropagatesScanFailure(t *testing.T) {
	api := newFakeMetaobjectAPI()
	api.failList = errors.New("throttled")
	store := NewBundleStore(api)

	_, err := store.List(context.Background(), 1, 20, "")
	assert.Error(t, err)
}

func TestGetAbsentBundleIsNilNotError(t *testing.T) {
	store := NewBundleStore(newFakeMetaobjectAPI())

	b, err := store.Get(context.Background(), "gid://fake/Metaobject/999")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestCreateRegistersSchemaAndAssignsIdentity(t *testing.T) {
	api := newFakeMetaobjectAPI()
	store := NewBundleStore(api)

	created := seedBundles(t, store, models.BundleStatusActive, 1)[0]

	assert.True(t, api.definitions["$app:bundle"])
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Handle)
}

func TestCreateDuplicateTitleIsTyped(t *testing.T) {
	api := newFakeMetaobjectAPI()
	api.userErrors = []shopify.UserError{{Field: []string{"handle"}, Message: "Handle is taken", Code: "TAKEN"}}
	store := NewBundleStore(api)

	_, err := store.Create(context.Background(), &models.Bundle{Title: "Dup"})
	assert.ErrorIs(t, err, ErrDuplicateTitle)
}

func TestCreateRemoteFieldErrorsSurfaceVerbatim(t *testing.T) {
	api := newFakeMetaobjectAPI()
	api.userErrors = []shopify.UserError{{Field: []string{"fields", "title"}, Message: "Value is too long", Code: "INVALID"}}
	store := NewBundleStore(api)

	_, err := store.Create(context.Background(), &models.Bundle{Title: "Long"})

	var remoteErr *RemoteValidationError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "Value is too long", remoteErr.Errors[0].Message)
}

func TestUpdateMissingBundleIsNotFound(t *testing.T) {
	store := NewBundleStore(newFakeMetaobjectAPI())

	title := "Renamed"
	_, err := store.Update(context.Background(), "gid://fake/Metaobject/999", codec.BundlePatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePatchesOnlyNamedFields(t *testing.T) {
	api := newFakeMetaobjectAPI()
	store := NewBundleStore(api)
	created := seedBundles(t, store, models.BundleStatusActive, 1)[0]

	status := models.BundleStatusInactive
	updated, err := store.Update(context.Background(), created.ID, codec.BundlePatch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.BundleStatusInactive, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Steps, updated.Steps)
}

func TestUpdateEmptyPatchReturnsExistingState(t *testing.T) {
	api := newFakeMetaobjectAPI()
	store := NewBundleStore(api)
	created := seedBundles(t, store, models.BundleStatusActive, 1)[0]

	updated, err := store.Update(context.Background(), created.ID, codec.BundlePatch{})
	require.NoError(t, err)
	assert.Equal(t, &created, updated)
}

func TestDeleteReportsAbsenceWithoutError(t *testing.T) {
	store := NewBundleStore(newFakeMetaobjectAPI())

	deleted, userErrors, err := store.Delete(context.Background(), "gid://fake/Metaobject/999")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, userErrors)
}

func TestDuplicateProducesIndependentCopy(t *testing.T) {
	api := newFakeMetaobjectAPI()
	store := NewBundleStore(api)

	source, err := store.Create(context.Background(), &models.Bundle{
		Title:          "Original",
		Status:         models.BundleStatusActive,
		DiscountType:   models.DiscountTypeFixed,
		DiscountValue:  5,
		LayoutType:     models.LayoutTypeGrid,
		MobileColumns:  2,
		DesktopColumns: 4,
		LayoutSettings: models.DefaultLayoutSettings(models.LayoutTypeGrid),
		Steps: []models.BundleStep{{
			ID:            models.NewID(),
			Title:         "Pick",
			Position:      1,
			MinSelections: 1,
			SelectionType: models.SelectionTypeProduct,
			Products:      []models.BundleProduct{{ID: "p1", Position: 1}},
		}},
		CombinationImageIDs: []string{"combo-1"},
	})
	require.NoError(t, err)

	clone, err := store.Duplicate(context.Background(), source.ID, "Copy of Original", models.BundleStatusDraft)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, "Copy of Original", clone.Title)
	assert.Equal(t, models.BundleStatusDraft, clone.Status)
	assert.Equal(t, source.DiscountType, clone.DiscountType)
	assert.Empty(t, clone.CombinationImageIDs)

	require.Len(t, clone.Steps, 1)
	assert.NotEqual(t, source.Steps[0].ID, clone.Steps[0].ID)
	assert.Equal(t, source.Steps[0].Products, clone.Steps[0].Products)

	// Mutating the copy leaves the source untouched.
	status := models.BundleStatusInactive
	_, err = store.Update(context.Background(), clone.ID, codec.BundlePatch{Status: &status})
	require.NoError(t, err)

	reread, err := store.Get(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BundleStatusActive, reread.Status)
}

func TestDuplicateMissingSourceIsNotFound(t *testing.T) {
	store := NewBundleStore(newFakeMetaobjectAPI())

	_, err := store.Duplicate(context.Background(), "gid://fake/Metaobject/999", "Copy", models.BundleStatusDraft)
	assert.ErrorIs(t, err, ErrNotFound)
}
