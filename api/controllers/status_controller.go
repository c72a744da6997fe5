package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/notify"
	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
)

type StatusController struct {
	orch *orchestrator.Orchestrator
}

func NewStatusController(orch *orchestrator.Orchestrator) *StatusController {
	return &StatusController{orch: orch}
}

// HandleStatus returns the state the web UI renders.
// GET /api/self/v1/status
func (ctrl *StatusController) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":             ctrl.orch.Snapshot(),
		"inFlight":          ctrl.orch.Coordinator().InFlight(),
		"notify_ws_enabled": notify.WSEnabled(),
	})
}

// HandleClearError dismisses the error banner.
// DELETE /api/self/v1/error
func (ctrl *StatusController) HandleClearError(c *gin.Context) {
	ctrl.orch.Errors().Clear()
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}
