// internal/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/services"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

type BundleHandler struct {
	bundleService  *services.BundleService
	pricingService *services.PricingService
}

func NewBundleHandler(bundleService *services.BundleService, pricingService *services.PricingService) *BundleHandler {
	return &BundleHandler{
		bundleService:  bundleService,
		pricingService: pricingService,
	}
}

// GET /bundles
func (h *BundleHandler) ListBundles(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.bundleService.List(c.Request.Context(), params.Page, params.Limit, params.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, params.Page, params.Limit, result.Total)
	utils.SuccessResponseWithMeta(c, result.Items, gin.H{
		"page":     params.Page,
		"limit":    params.Limit,
		"total":    result.Total,
		"has_next": result.HasNext,
	})
}

// GET /bundles/:id
func (h *BundleHandler) GetBundle(c *gin.Context) {
	bundle, err := h.bundleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, bundle)
}

// POST /bundles
func (h *BundleHandler) CreateBundle(c *gin.Context) {
	var req services.CreateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.bundleService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, result)
}

// PUT /bundles/:id
func (h *BundleHandler) UpdateBundle(c *gin.Context) {
	var req services.UpdateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.bundleService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// DELETE /bundles/:id
func (h *BundleHandler) DeleteBundle(c *gin.Context) {
	result, err := h.bundleService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// POST /bundles/:id/duplicate
func (h *BundleHandler) DuplicateBundle(c *gin.Context) {
	var req services.DuplicateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.bundleService.Duplicate(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, result)
}

// POST /bundles/:id/steps
func (h *BundleHandler) AddStep(c *gin.Context) {
	var req services.StepInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.bundleService.AddStep(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, result)
}

// PUT /bundles/:id/steps/:stepId
func (h *BundleHandler) UpdateStep(c *gin.Context) {
	var req services.StepInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.bundleService.UpdateStep(c.Request.Context(), c.Param("id"), c.Param("stepId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// DELETE /bundles/:id/steps/:stepId
func (h *BundleHandler) RemoveStep(c *gin.Context) {
	result, err := h.bundleService.RemoveStep(c.Request.Context(), c.Param("id"), c.Param("stepId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

type reorderStepsRequest struct {
	StepIDs []string `json:"step_ids" validate:"required,min=1,dive,required"`
}

// PUT /bundles/:id/steps/reorder
func (h *BundleHandler) ReorderSteps(c *gin.Context) {
	var req reorderStepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.bundleService.ReorderSteps(c.Request.Context(), c.Param("id"), req.StepIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type bulkStatusRequest struct {
	IDs    []string            `json:"ids" validate:"required,min=1,dive,required"`
	Status models.BundleStatus `json:"status" validate:"required,oneof=draft active inactive"`
}

type bulkResponse struct {
	*services.BulkResult
	SyncError string `json:"sync_error,omitempty"`
}

// POST /bundles/bulk/delete
func (h *BundleHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, syncErr, err := h.bundleService.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, bulkResponse{BulkResult: result, SyncError: syncErr})
}

// POST /bundles/bulk/status
func (h *BundleHandler) BulkSetStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, syncErr, err := h.bundleService.BulkSetStatus(c.Request.Context(), req.IDs, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, bulkResponse{BulkResult: result, SyncError: syncErr})
}

type priceRequest struct {
	Selections []services.PriceSelection `json:"selections" validate:"required,min=1,dive"`
}

// POST /bundles/:id/price
func (h *BundleHandler) CalculatePrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	bundle, err := h.bundleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	breakdown, err := h.pricingService.CalculatePrice(bundle, req.Selections)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, breakdown)
}
