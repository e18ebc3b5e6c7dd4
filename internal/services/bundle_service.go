// internal/services/bundle_service.go
package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dario9661s/bundles-sub000/internal/codec"
	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/stores"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

// MaxBulkSize caps how many ids a single bulk operation may carry.
const MaxBulkSize = 50

type BundleService struct {
	store *stores.BundleStore
	sync  *SyncService
	bulk  *BulkExecutor
	log   *logrus.Entry
}

type ProductInput struct {
	ID       string `json:"id" validate:"required"`
	Position int    `json:"position" validate:"min=0"`
}

type StepInput struct {
	ID            string         `json:"id,omitempty"`
	Title         string         `json:"title" validate:"required,min=1,max=255"`
	Description   string         `json:"description,omitempty"`
	MinSelections int            `json:"min_selections" validate:"min=0"`
	MaxSelections *int           `json:"max_selections,omitempty"`
	Required      bool           `json:"required"`
	SelectionType string         `json:"selection_type,omitempty" validate:"omitempty,oneof=product variant"`
	Products      []ProductInput `json:"products" validate:"required,min=1,dive"`
}

type CreateBundleRequest struct {
	Title          string                 `json:"title" validate:"required,min=1,max=255"`
	Status         models.BundleStatus    `json:"status" validate:"required,oneof=draft active inactive"`
	DiscountType   models.DiscountType    `json:"discount_type" validate:"required,oneof=percentage fixed total"`
	DiscountValue  float64                `json:"discount_value" validate:"min=0"`
	LayoutType     models.LayoutType      `json:"layout_type" validate:"required,oneof=grid slider modal selection"`
	MobileColumns  int                    `json:"mobile_columns" validate:"min=1,max=4"`
	DesktopColumns int                    `json:"desktop_columns" validate:"min=1,max=6"`
	LayoutSettings *models.LayoutSettings `json:"layout_settings,omitempty"`
	Steps          []StepInput            `json:"steps" validate:"required,min=1,dive"`
}

type UpdateBundleRequest struct {
	Title          *string                `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Status         *models.BundleStatus   `json:"status,omitempty" validate:"omitempty,oneof=draft active inactive"`
	DiscountType   *models.DiscountType   `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed total"`
	DiscountValue  *float64               `json:"discount_value,omitempty" validate:"omitempty,min=0"`
	LayoutType     *models.LayoutType     `json:"layout_type,omitempty" validate:"omitempty,oneof=grid slider modal selection"`
	MobileColumns  *int                   `json:"mobile_columns,omitempty" validate:"omitempty,min=1,max=4"`
	DesktopColumns *int                   `json:"desktop_columns,omitempty" validate:"omitempty,min=1,max=6"`
	LayoutSettings *models.LayoutSettings `json:"layout_settings,omitempty"`
	Steps          []StepInput            `json:"steps,omitempty" validate:"omitempty,min=1,dive"`
}

type DuplicateBundleRequest struct {
	Title  string              `json:"title" validate:"required,min=1,max=255"`
	Status models.BundleStatus `json:"status,omitempty" validate:"omitempty,oneof=draft active inactive"`
}

// MutationResult pairs the committed bundle state with the outcome of
// the snapshot sync. A sync failure never undoes the mutation; it is
// reported here so callers can surface the transient divergence.
type MutationResult struct {
	Bundle    *models.Bundle `json:"bundle,omitempty"`
	SyncError string         `json:"sync_error,omitempty"`
}

func NewBundleService(store *stores.BundleStore, syncService *SyncService, bulk *BulkExecutor) *BundleService {
	return &BundleService{
		store: store,
		sync:  syncService,
		bulk:  bulk,
		log:   logrus.WithField("component", "bundle_service"),
	}
}

func (s *BundleService) List(ctx context.Context, page, limit int, status string) (*stores.ListResult, error) {
	if status != "" && !models.BundleStatus(status).Valid() {
		return nil, validationErrorf(fmt.Sprintf("unknown status %q", status))
	}
	return s.store.List(ctx, page, limit, models.BundleStatus(status))
}

func (s *BundleService) Get(ctx context.Context, id string) (*models.Bundle, error) {
	bundle, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, stores.ErrNotFound
	}
	return bundle, nil
}

func (s *BundleService) Create(ctx context.Context, req *CreateBundleRequest) (*MutationResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationErrorf(fmt.Sprintf("invalid bundle: %v", err))
	}

	steps, err := buildSteps(req.Steps)
	if err != nil {
		return nil, err
	}

	bundle := &models.Bundle{
		Title:          req.Title,
		Status:         req.Status,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		LayoutType:     req.LayoutType,
		MobileColumns:  req.MobileColumns,
		DesktopColumns: req.DesktopColumns,
		Steps:          steps,
	}
	if req.LayoutSettings != nil {
		bundle.LayoutSettings = *req.LayoutSettings
	} else {
		bundle.LayoutSettings = models.DefaultLayoutSettings(req.LayoutType)
	}

	created, err := s.store.Create(ctx, bundle)
	if err != nil {
		return nil, err
	}

	return s.withSync(ctx, created, models.SyncTriggerCreate), nil
}

func (s *BundleService) Update(ctx context.Context, id string, req *UpdateBundleRequest) (*MutationResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationErrorf(fmt.Sprintf("invalid bundle update: %v", err))
	}

	patch := codec.BundlePatch{
		Title:          req.Title,
		Status:         req.Status,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		LayoutType:     req.LayoutType,
		MobileColumns:  req.MobileColumns,
		DesktopColumns: req.DesktopColumns,
		LayoutSettings: req.LayoutSettings,
	}
	if req.Steps != nil {
		steps, err := buildSteps(req.Steps)
		if err != nil {
			return nil, err
		}
		patch.Steps = steps
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	return s.withSync(ctx, updated, models.SyncTriggerUpdate), nil
}

func (s *BundleService) Delete(ctx context.Context, id string) (*MutationResult, error) {
	deleted, userErrors, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		if len(userErrors) > 0 {
			return nil, &stores.RemoteValidationError{Errors: userErrors}
		}
		return nil, stores.ErrNotFound
	}

	return s.withSync(ctx, nil, models.SyncTriggerDelete), nil
}

func (s *BundleService) Duplicate(ctx context.Context, id string, req *DuplicateBundleRequest) (*MutationResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationErrorf(fmt.Sprintf("invalid duplicate request: %v", err))
	}

	status := req.Status
	if status == "" {
		status = models.BundleStatusDraft
	}

	copy, err := s.store.Duplicate(ctx, id, req.Title, status)
	if err != nil {
		return nil, err
	}

	return s.withSync(ctx, copy, models.SyncTriggerCreate), nil
}

// AddStep appends a step to the bundle. The step id is generated here
// and never changes afterwards.
func (s *BundleService) AddStep(ctx context.Context, id string, input *StepInput) (*MutationResult, error) {
	bundle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	step, err := buildStep(*input, len(bundle.Steps)+1)
	if err != nil {
		return nil, err
	}

	steps := append(append([]models.BundleStep{}, bundle.Steps...), step)
	return s.updateSteps(ctx, id, steps)
}

func (s *BundleService) UpdateStep(ctx context.Context, id, stepID string, input *StepInput) (*MutationResult, error) {
	bundle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range bundle.Steps {
		if bundle.Steps[i].ID == stepID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, stores.ErrNotFound
	}

	step, err := buildStep(*input, bundle.Steps[index].Position)
	if err != nil {
		return nil, err
	}
	step.ID = stepID

	steps := append([]models.BundleStep{}, bundle.Steps...)
	steps[index] = step
	return s.updateSteps(ctx, id, steps)
}

func (s *BundleService) RemoveStep(ctx context.Context, id, stepID string) (*MutationResult, error) {
	bundle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	steps := make([]models.BundleStep, 0, len(bundle.Steps))
	for _, step := range bundle.Steps {
		if step.ID != stepID {
			steps = append(steps, step)
		}
	}
	if len(steps) == len(bundle.Steps) {
		return nil, stores.ErrNotFound
	}
	if len(steps) == 0 {
		return nil, validationErrorf("a bundle must keep at least one step")
	}

	renumberSteps(steps)
	return s.updateSteps(ctx, id, steps)
}

// ReorderSteps rewrites step positions to match the given id order. The
// order must name every existing step exactly once.
func (s *BundleService) ReorderSteps(ctx context.Context, id string, stepIDs []string) (*MutationResult, error) {
	bundle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(stepIDs) != len(bundle.Steps) {
		return nil, validationErrorf("step order must name every step exactly once")
	}

	byID := make(map[string]models.BundleStep, len(bundle.Steps))
	for _, step := range bundle.Steps {
		byID[step.ID] = step
	}

	steps := make([]models.BundleStep, 0, len(stepIDs))
	for _, stepID := range stepIDs {
		step, ok := byID[stepID]
		if !ok {
			return nil, validationErrorf(fmt.Sprintf("unknown step id %q", stepID))
		}
		delete(byID, stepID)
		steps = append(steps, step)
	}

	renumberSteps(steps)
	return s.updateSteps(ctx, id, steps)
}

// BulkDelete removes up to MaxBulkSize bundles, isolating per-item
// failures, then syncs once for the whole batch.
func (s *BundleService) BulkDelete(ctx context.Context, ids []string) (*BulkResult, string, error) {
	if err := checkBulkSize(ids); err != nil {
		return nil, "", err
	}

	result := s.bulk.Run(ctx, ids, func(ctx context.Context, id string) error {
		deleted, userErrors, err := s.store.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			if len(userErrors) > 0 {
				return &stores.RemoteValidationError{Errors: userErrors}
			}
			return stores.ErrNotFound
		}
		return nil
	})

	return &result, s.syncAfterBulk(ctx), nil
}

func (s *BundleService) BulkSetStatus(ctx context.Context, ids []string, status models.BundleStatus) (*BulkResult, string, error) {
	if err := checkBulkSize(ids); err != nil {
		return nil, "", err
	}
	if !status.Valid() {
		return nil, "", validationErrorf(fmt.Sprintf("unknown status %q", status))
	}

	result := s.bulk.Run(ctx, ids, func(ctx context.Context, id string) error {
		_, err := s.store.Update(ctx, id, codec.BundlePatch{Status: &status})
		return err
	})

	return &result, s.syncAfterBulk(ctx), nil
}

func (s *BundleService) updateSteps(ctx context.Context, id string, steps []models.BundleStep) (*MutationResult, error) {
	updated, err := s.store.Update(ctx, id, codec.BundlePatch{Steps: steps})
	if err != nil {
		return nil, err
	}
	return s.withSync(ctx, updated, models.SyncTriggerStepChange), nil
}

func (s *BundleService) withSync(ctx context.Context, bundle *models.Bundle, trigger models.SyncTrigger) *MutationResult {
	result := &MutationResult{Bundle: bundle}
	if err := s.sync.OnBundleChanged(ctx, trigger); err != nil {
		s.log.WithError(err).Warn("Snapshot sync failed after mutation")
		result.SyncError = err.Error()
	}
	return result
}

func (s *BundleService) syncAfterBulk(ctx context.Context) string {
	if err := s.sync.OnBundleChanged(ctx, models.SyncTriggerBulk); err != nil {
		s.log.WithError(err).Warn("Snapshot sync failed after bulk operation")
		return err.Error()
	}
	return ""
}

func checkBulkSize(ids []string) error {
	if len(ids) == 0 {
		return validationErrorf("ids must not be empty")
	}
	if len(ids) > MaxBulkSize {
		return fmt.Errorf("%w: %d ids, maximum is %d", ErrLimitExceeded, len(ids), MaxBulkSize)
	}
	return nil
}

func buildSteps(inputs []StepInput) ([]models.BundleStep, error) {
	steps := make([]models.BundleStep, 0, len(inputs))
	for i, input := range inputs {
		step, err := buildStep(input, i+1)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// buildStep normalizes one step input. Existing step ids are kept so
// updates never regenerate identity; missing ids mark new steps.
func buildStep(input StepInput, position int) (models.BundleStep, error) {
	if input.MaxSelections != nil && *input.MaxSelections < input.MinSelections {
		return models.BundleStep{}, validationErrorf(fmt.Sprintf(
			"step %q: max selections (%d) must be at least min selections (%d)",
			input.Title, *input.MaxSelections, input.MinSelections))
	}

	selectionType := models.SelectionType(input.SelectionType)
	if selectionType == "" {
		selectionType = models.SelectionTypeProduct
	}

	stepID := input.ID
	if stepID == "" {
		stepID = models.NewID()
	}

	products := make([]models.BundleProduct, 0, len(input.Products))
	for _, p := range input.Products {
		products = append(products, models.BundleProduct{ID: p.ID, Position: p.Position})
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Position < products[j].Position })
	for i := range products {
		products[i].Position = i + 1
	}

	return models.BundleStep{
		ID:            stepID,
		Title:         input.Title,
		Description:   input.Description,
		Position:      position,
		MinSelections: input.MinSelections,
		MaxSelections: input.MaxSelections,
		Required:      input.Required,
		SelectionType: selectionType,
		Products:      products,
	}, nil
}

func renumberSteps(steps []models.BundleStep) {
	for i := range steps {
		steps[i].Position = i + 1
	}
}
