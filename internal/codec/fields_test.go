// internal/codec/fields_test.go
package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

func intPtr(v int) *int { return &v }

func sampleBundle() *models.Bundle {
	return &models.Bundle{
		Title:          "Breakfast Box",
		Status:         models.BundleStatusActive,
		DiscountType:   models.DiscountTypePercentage,
		DiscountValue:  12.5,
		LayoutType:     models.LayoutTypeSlider,
		MobileColumns:  2,
		DesktopColumns: 4,
		LayoutSettings: models.DefaultLayoutSettings(models.LayoutTypeSlider),
		Steps: []models.BundleStep{
			{
				ID:            "step-1",
				Title:         "Pick a cereal",
				Position:      1,
				MinSelections: 1,
				MaxSelections: intPtr(2),
				Required:      true,
				SelectionType: models.SelectionTypeProduct,
				Products: []models.BundleProduct{
					{ID: "gid://shopify/Product/1", Position: 1},
					{ID: "gid://shopify/Product/2", Position: 2},
				},
			},
		},
	}
}

func fieldValue(t *testing.T, fields []shopify.MetaobjectField, key string) string {
	t.Helper()
	for _, f := range fields {
		if f.Key == key {
			return f.Value
		}
	}
	t.Fatalf("field %q not present", key)
	return ""
}

func TestEncodeBundleRoundTrip(t *testing.T) {
	original := sampleBundle()

	fields := EncodeBundle(original)
	decoded := Decode("gid://shopify/Metaobject/42", "breakfast-box", fields)

	assert.Equal(t, "gid://shopify/Metaobject/42", decoded.ID)
	assert.Equal(t, "breakfast-box", decoded.Handle)
	assert.Equal(t, original.Title, decoded.Title)
	assert.Equal(t, original.Status, decoded.Status)
	assert.Equal(t, original.DiscountType, decoded.DiscountType)
	assert.Equal(t, original.DiscountValue, decoded.DiscountValue)
	assert.Equal(t, original.LayoutType, decoded.LayoutType)
	assert.Equal(t, original.MobileColumns, decoded.MobileColumns)
	assert.Equal(t, original.DesktopColumns, decoded.DesktopColumns)
	assert.Equal(t, original.LayoutSettings, decoded.LayoutSettings)
	assert.Equal(t, original.Steps, decoded.Steps)
}

func TestEncodePatchOnlyTouchesSetFields(t *testing.T) {
	title := "Renamed"
	status := models.BundleStatusInactive

	fields := Encode(BundlePatch{Title: &title, Status: &status})

	require.Len(t, fields, 2)
	assert.Equal(t, "Renamed", fieldValue(t, fields, FieldTitle))
	assert.Equal(t, "inactive", fieldValue(t, fields, FieldStatus))
}

func TestEncodeEmptyPatchYieldsNoFields(t *testing.T) {
	assert.Empty(t, Encode(BundlePatch{}))
}

func TestDecodeMissingFieldsFallsBackToDefaults(t *testing.T) {
	decoded := Decode("id-1", "handle-1", nil)

	assert.Equal(t, models.BundleStatusDraft, decoded.Status)
	assert.Equal(t, models.DiscountTypePercentage, decoded.DiscountType)
	assert.Equal(t, models.LayoutTypeGrid, decoded.LayoutType)
	assert.Equal(t, 2, decoded.MobileColumns)
	assert.Equal(t, 4, decoded.DesktopColumns)
	assert.Empty(t, decoded.Steps)
	// Grid bundles synthesize grid settings when the record has none.
	require.NotNil(t, decoded.LayoutSettings.Grid)
	assert.Equal(t, "square", decoded.LayoutSettings.Grid.ImageAspect)
}

func TestDecodeMalformedValuesDegradeToDefaults(t *testing.T) {
	decoded := Decode("id-1", "handle-1", []shopify.MetaobjectField{
		{Key: FieldStatus, Value: "archived"},
		{Key: FieldDiscountType, Value: "bogo"},
		{Key: FieldDiscountValue, Value: "not-a-number"},
		{Key: FieldLayoutType, Value: "portrait"},
		{Key: FieldMobileColumns, Value: "two"},
		{Key: FieldSteps, Value: "{not json"},
		{Key: FieldLayoutSettings, Value: "[]"},
		{Key: "unknown_key", Value: "ignored"},
	})

	assert.Equal(t, models.BundleStatusDraft, decoded.Status)
	assert.Equal(t, models.DiscountTypePercentage, decoded.DiscountType)
	assert.Equal(t, float64(0), decoded.DiscountValue)
	assert.Equal(t, models.LayoutTypeGrid, decoded.LayoutType)
	assert.Equal(t, 2, decoded.MobileColumns)
	assert.Empty(t, decoded.Steps)
	assert.NotNil(t, decoded.LayoutSettings.Grid)
}

func TestDecodeDefaultsStepSelectionType(t *testing.T) {
	decoded := Decode("id-1", "handle-1", []shopify.MetaobjectField{
		{Key: FieldSteps, Value: `[{"id":"s1","title":"Pick","position":1,"products":[]}]`},
	})

	require.Len(t, decoded.Steps, 1)
	assert.Equal(t, models.SelectionTypeProduct, decoded.Steps[0].SelectionType)
}

func TestDecodeSynthesizesLayoutDefaultsPerLayout(t *testing.T) {
	decoded := Decode("id-1", "handle-1", []shopify.MetaobjectField{
		{Key: FieldLayoutType, Value: "modal"},
	})

	require.NotNil(t, decoded.LayoutSettings.Modal)
	assert.Equal(t, "Build your bundle", decoded.LayoutSettings.Modal.TriggerLabel)
	assert.Nil(t, decoded.LayoutSettings.Grid)
}

func TestEncodeCombinationSortsProductSet(t *testing.T) {
	fields := EncodeCombination(&models.Combination{
		ProductIDs: []string{"p3", "p1", "p2"},
		MediaID:    "media-1",
		ImageURL:   "https://cdn.example.com/1.png",
	})

	assert.Equal(t, `["p1","p2","p3"]`, fieldValue(t, fields, CombinationFieldProducts))
}

func TestDecodeCombinationMalformedProductsYieldsEmptySet(t *testing.T) {
	decoded := DecodeCombination("c1", []shopify.MetaobjectField{
		{Key: CombinationFieldProducts, Value: "{broken"},
		{Key: CombinationFieldMediaID, Value: "media-1"},
	})

	assert.Empty(t, decoded.ProductIDs)
	assert.Equal(t, "media-1", decoded.MediaID)
}

func TestCombinationRoundTrip(t *testing.T) {
	original := &models.Combination{
		ProductIDs: []string{"p2", "p1"},
		MediaID:    "media-9",
		ImageURL:   "https://cdn.example.com/9.png",
		Title:      "Duo",
	}

	decoded := DecodeCombination("c9", EncodeCombination(original))

	assert.Equal(t, "c9", decoded.ID)
	assert.Equal(t, []string{"p1", "p2"}, decoded.ProductIDs)
	assert.Equal(t, original.MediaID, decoded.MediaID)
	assert.Equal(t, original.ImageURL, decoded.ImageURL)
	assert.Equal(t, original.Title, decoded.Title)
}
