package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
)

// Reconciler is the part of app.Reconciler the sync endpoints use.
type Reconciler interface {
	RunCycle(ctx context.Context) (app.CycleResult, error)
	Status() app.SyncStatus
}

// SyncHandler exposes manual reconciliation and the sync cursor.
type SyncHandler struct {
	reconciler Reconciler
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(reconciler Reconciler) *SyncHandler {
	return &SyncHandler{reconciler: reconciler}
}

// TriggerSync handles POST /api/v1/sync
// The cycle runs to completion even if the client goes away.
//
// @Summary Run one reconciliation cycle
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncResultResponse
// @Failure 409 {object} dto.ErrorResponse "a cycle is already running"
// @Failure 503 {object} dto.ErrorResponse "the remote could not be fetched"
// @Router /api/v1/sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	result, err := h.reconciler.RunCycle(c.Request.Context())
	if errors.Is(err, app.ErrCycleInProgress) {
		dto.RespondWithCode(c, dto.ErrorCodeBusy, err.Error())
		return
	}

	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SyncResultFromApp(result))
}

// GetStatus handles GET /api/v1/sync/status
func (h *SyncHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SyncStatusFromApp(h.reconciler.Status()))
}

// RegisterSyncRoutes registers sync routes on the given router group.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.TriggerSync)
	rg.GET("/sync/status", h.GetStatus)
}
