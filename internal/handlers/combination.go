// internal/handlers/combination.go
package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dario9661s/bundles-sub000/internal/services"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

type CombinationHandler struct {
	combinationService *services.CombinationService
}

func NewCombinationHandler(combinationService *services.CombinationService) *CombinationHandler {
	return &CombinationHandler{combinationService: combinationService}
}

// GET /combinations
func (h *CombinationHandler) ListCombinations(c *gin.Context) {
	if idsParam := c.Query("ids"); idsParam != "" {
		combinations, err := h.combinationService.ListByIDs(c.Request.Context(), strings.Split(idsParam, ","))
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, combinations)
		return
	}

	combinations, err := h.combinationService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, combinations)
}

// GET /combinations/lookup?product_ids=a,b,c
func (h *CombinationHandler) LookupCombination(c *gin.Context) {
	idsParam := c.Query("product_ids")
	if idsParam == "" {
		utils.BadRequestResponse(c, "product_ids is required", nil)
		return
	}

	combination, err := h.combinationService.FindByProductSet(c.Request.Context(), strings.Split(idsParam, ","))
	if err != nil {
		respondError(c, err)
		return
	}
	if combination == nil {
		utils.NotFoundResponse(c, "No combination matches this product set")
		return
	}
	utils.SuccessResponse(c, combination)
}

// POST /combinations (multipart: image file + product_ids + title)
func (h *CombinationHandler) CreateCombination(c *gin.Context) {
	productIDs := c.PostForm("product_ids")
	if productIDs == "" {
		utils.BadRequestResponse(c, "product_ids is required", nil)
		return
	}

	req := &services.CreateCombinationRequest{
		ProductIDs: strings.Split(productIDs, ","),
		Title:      c.PostForm("title"),
	}

	filename, mimeType, data, err := readImageFile(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid image upload", err.Error())
		return
	}
	req.Filename = filename
	req.MimeType = mimeType
	req.ImageBytes = data

	combination, err := h.combinationService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, combination)
}

// PUT /combinations/:id (multipart: optional image file + title)
func (h *CombinationHandler) UpdateCombination(c *gin.Context) {
	req := &services.UpdateCombinationRequest{}

	if title, ok := c.GetPostForm("title"); ok {
		req.Title = &title
	}

	if _, err := c.FormFile("image"); err == nil {
		filename, mimeType, data, err := readImageFile(c)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid image upload", err.Error())
			return
		}
		req.Filename = filename
		req.MimeType = mimeType
		req.ImageBytes = data
	}

	combination, err := h.combinationService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, combination)
}

// DELETE /combinations/:id
func (h *CombinationHandler) DeleteCombination(c *gin.Context) {
	if err := h.combinationService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}

func readImageFile(c *gin.Context) (filename, mimeType string, data []byte, err error) {
	header, err := c.FormFile("image")
	if err != nil {
		return "", "", nil, err
	}

	file, err := header.Open()
	if err != nil {
		return "", "", nil, err
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, err
	}

	return header.Filename, header.Header.Get("Content-Type"), data, nil
}
