// internal/codec/fields.go
package codec

import (
	"encoding/json"
	"strconv"

	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

// Field keys of the bundle metaobject. Every write is a full replace of
// the named field; composite attributes travel as JSON blobs.
const (
	FieldTitle             = "title"
	FieldStatus            = "status"
	FieldDiscountType      = "discount_type"
	FieldDiscountValue     = "discount_value"
	FieldLayoutType        = "layout_type"
	FieldMobileColumns     = "mobile_columns"
	FieldDesktopColumns    = "desktop_columns"
	FieldLayoutSettings    = "layout_settings"
	FieldSteps             = "steps"
	FieldCombinationImages = "combination_images"
)

// BundleFieldKeys is the fixed field set registered with the metaobject
// definition.
var BundleFieldKeys = []string{
	FieldTitle,
	FieldStatus,
	FieldDiscountType,
	FieldDiscountValue,
	FieldLayoutType,
	FieldMobileColumns,
	FieldDesktopColumns,
	FieldLayoutSettings,
	FieldSteps,
	FieldCombinationImages,
}

// Numeric decode defaults for records whose scalar fields are missing
// or unparsable.
const (
	defaultDiscountValue  = 0
	defaultMobileColumns  = 2
	defaultDesktopColumns = 4
)

// BundlePatch is a partial bundle: only non-nil members are encoded, so
// an update touches exactly the fields the caller set.
type BundlePatch struct {
	Title               *string
	Status              *models.BundleStatus
	DiscountType        *models.DiscountType
	DiscountValue       *float64
	LayoutType          *models.LayoutType
	MobileColumns       *int
	DesktopColumns      *int
	LayoutSettings      *models.LayoutSettings
	Steps               []models.BundleStep
	CombinationImageIDs []string
}

// EncodeBundle emits the full field list for a create.
func EncodeBundle(b *models.Bundle) []shopify.MetaobjectField {
	status := b.Status
	patch := BundlePatch{
		Title:               &b.Title,
		Status:              &status,
		DiscountType:        &b.DiscountType,
		DiscountValue:       &b.DiscountValue,
		LayoutType:          &b.LayoutType,
		MobileColumns:       &b.MobileColumns,
		DesktopColumns:      &b.DesktopColumns,
		LayoutSettings:      &b.LayoutSettings,
		Steps:               b.Steps,
		CombinationImageIDs: b.CombinationImageIDs,
	}
	if patch.Steps == nil {
		patch.Steps = []models.BundleStep{}
	}
	if patch.CombinationImageIDs == nil {
		patch.CombinationImageIDs = []string{}
	}
	return Encode(patch)
}

// Encode maps populated patch members to metaobject fields. Composite
// members marshal to JSON blobs; marshaling of the domain types cannot
// fail, so encode never does.
func Encode(p BundlePatch) []shopify.MetaobjectField {
	fields := make([]shopify.MetaobjectField, 0, len(BundleFieldKeys))

	if p.Title != nil {
		fields = append(fields, shopify.MetaobjectField{Key: FieldTitle, Value: *p.Title})
	}
	if p.Status != nil {
		fields = append(fields, shopify.MetaobjectField{Key: FieldStatus, Value: string(*p.Status)})
	}
	if p.DiscountType != nil {
		fields = append(fields, shopify.MetaobjectField{Key: FieldDiscountType, Value: string(*p.DiscountType)})
	}
	if p.DiscountValue != nil {
		fields = append(fields, shopify.MetaobjectField{
			Key:   FieldDiscountValue,
			Value: strconv.FormatFloat(*p.DiscountValue, 'f', -1, 64),
		})
	}
	if p.LayoutType != nil {
		fields = append(fields, shopify.MetaobjectField{Key: FieldLayoutType, Value: string(*p.LayoutType)})
	}
	if p.MobileColumns != nil {
		fields = append(fields, shopify.MetaobjectField{Key: FieldMobileColumns, Value: strconv.Itoa(*p.MobileColumns)})
	}
	if p.DesktopColumns != nil {
		fields = append(fields, shopify.MetaobjectField{Key: FieldDesktopColumns, Value: strconv.Itoa(*p.DesktopColumns)})
	}
	if p.LayoutSettings != nil {
		blob, _ := json.Marshal(p.LayoutSettings)
		fields = append(fields, shopify.MetaobjectField{Key: FieldLayoutSettings, Value: string(blob)})
	}
	if p.Steps != nil {
		blob, _ := json.Marshal(p.Steps)
		fields = append(fields, shopify.MetaobjectField{Key: FieldSteps, Value: string(blob)})
	}
	if p.CombinationImageIDs != nil {
		blob, _ := json.Marshal(p.CombinationImageIDs)
		fields = append(fields, shopify.MetaobjectField{Key: FieldCombinationImages, Value: string(blob)})
	}

	return fields
}

// Decode rebuilds a Bundle from stored fields. It never fails: unknown
// keys are skipped, malformed blobs degrade to defaults, legacy records
// missing layout settings get the per-layout default shape, and steps
// written before selection types existed default to product selection.
func Decode(id, handle string, fields []shopify.MetaobjectField) *models.Bundle {
	b := &models.Bundle{
		ID:             id,
		Handle:         handle,
		Status:         models.BundleStatusDraft,
		DiscountType:   models.DiscountTypePercentage,
		LayoutType:     models.LayoutTypeGrid,
		DiscountValue:  defaultDiscountValue,
		MobileColumns:  defaultMobileColumns,
		DesktopColumns: defaultDesktopColumns,
		Steps:          []models.BundleStep{},
	}

	var haveLayoutSettings bool

	for _, f := range fields {
		switch f.Key {
		case FieldTitle:
			b.Title = f.Value
		case FieldStatus:
			if s := models.BundleStatus(f.Value); s.Valid() {
				b.Status = s
			}
		case FieldDiscountType:
			if d := models.DiscountType(f.Value); d.Valid() {
				b.DiscountType = d
			}
		case FieldDiscountValue:
			if v, err := strconv.ParseFloat(f.Value, 64); err == nil {
				b.DiscountValue = v
			}
		case FieldLayoutType:
			if l := models.LayoutType(f.Value); l.Valid() {
				b.LayoutType = l
			}
		case FieldMobileColumns:
			if v, err := strconv.Atoi(f.Value); err == nil {
				b.MobileColumns = v
			}
		case FieldDesktopColumns:
			if v, err := strconv.Atoi(f.Value); err == nil {
				b.DesktopColumns = v
			}
		case FieldLayoutSettings:
			var ls models.LayoutSettings
			if err := json.Unmarshal([]byte(f.Value), &ls); err == nil {
				b.LayoutSettings = ls
				haveLayoutSettings = true
			}
		case FieldSteps:
			var steps []models.BundleStep
			if err := json.Unmarshal([]byte(f.Value), &steps); err == nil {
				b.Steps = steps
			}
		case FieldCombinationImages:
			var ids []string
			if err := json.Unmarshal([]byte(f.Value), &ids); err == nil {
				b.CombinationImageIDs = ids
			}
		}
	}

	if !haveLayoutSettings {
		b.LayoutSettings = models.DefaultLayoutSettings(b.LayoutType)
	}

	for i := range b.Steps {
		if b.Steps[i].SelectionType == "" {
			b.Steps[i].SelectionType = models.SelectionTypeProduct
		}
	}

	return b
}
