// internal/models/bundle.go
package models

// Bundle is the domain representation of a multi-step product picker.
// ID and Handle are assigned by the remote metaobject store on create.
type Bundle struct {
	ID                  string         `json:"id"`
	Handle              string         `json:"handle"`
	Title               string         `json:"title"`
	Status              BundleStatus   `json:"status"`
	DiscountType        DiscountType   `json:"discount_type"`
	DiscountValue       float64        `json:"discount_value"`
	LayoutType          LayoutType     `json:"layout_type"`
	MobileColumns       int            `json:"mobile_columns"`
	DesktopColumns      int            `json:"desktop_columns"`
	LayoutSettings      LayoutSettings `json:"layout_settings"`
	Steps               []BundleStep   `json:"steps"`
	CombinationImageIDs []string       `json:"combination_image_ids,omitempty"`
}

// BundleStep keeps the id assigned when the step was first added to the
// bundle; updates never regenerate it, so the synchronized snapshot and
// the admin UI agree on step identity across edits.
type BundleStep struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Position      int             `json:"position"`
	MinSelections int             `json:"minSelections"`
	MaxSelections *int            `json:"maxSelections,omitempty"`
	Required      bool            `json:"required"`
	SelectionType SelectionType   `json:"selectionType"`
	Products      []BundleProduct `json:"products"`
}

// BundleProduct references a catalog product by its remote id. Title,
// image and price are resolved live from the catalog by the UI layer.
type BundleProduct struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// LayoutSettings is a variant record: exactly the member matching the
// bundle's layout type is populated.
type LayoutSettings struct {
	Grid      *GridSettings      `json:"grid,omitempty"`
	Slider    *SliderSettings    `json:"slider,omitempty"`
	Modal     *ModalSettings     `json:"modal,omitempty"`
	Selection *SelectionSettings `json:"selection,omitempty"`
}

type GridSettings struct {
	ImageAspect        string `json:"imageAspect"`
	ShowQuantityBadges bool   `json:"showQuantityBadges"`
	ShowPrices         bool   `json:"showPrices"`
}

type SliderSettings struct {
	SlidesPerView int  `json:"slidesPerView"`
	ShowArrows    bool `json:"showArrows"`
	Loop          bool `json:"loop"`
}

type ModalSettings struct {
	TriggerLabel string `json:"triggerLabel"`
	Size         string `json:"size"`
}

type SelectionSettings struct {
	ShowProgressBar   bool `json:"showProgressBar"`
	CollapseCompleted bool `json:"collapseCompleted"`
}

// DefaultLayoutSettings synthesizes the settings for records written
// before layout settings existed. Each layout has a distinct default
// shape.
func DefaultLayoutSettings(layout LayoutType) LayoutSettings {
	switch layout {
	case LayoutTypeSlider:
		return LayoutSettings{Slider: &SliderSettings{
			SlidesPerView: 2,
			ShowArrows:    true,
			Loop:          false,
		}}
	case LayoutTypeModal:
		return LayoutSettings{Modal: &ModalSettings{
			TriggerLabel: "Build your bundle",
			Size:         "large",
		}}
	case LayoutTypeSelection:
		return LayoutSettings{Selection: &SelectionSettings{
			ShowProgressBar:   true,
			CollapseCompleted: true,
		}}
	default:
		return LayoutSettings{Grid: &GridSettings{
			ImageAspect:        "square",
			ShowQuantityBadges: true,
			ShowPrices:         true,
		}}
	}
}
