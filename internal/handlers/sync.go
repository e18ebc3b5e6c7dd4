// internal/handlers/sync.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/services"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

type SyncHandler struct {
	syncService *services.SyncService
}

func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// POST /sync — force a snapshot rebuild outside any mutation.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	if err := h.syncService.OnBundleChanged(c.Request.Context(), models.SyncTriggerManual); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"synced": true})
}

// GET /sync/runs
func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.syncService.RecentRuns(limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, runs)
}
