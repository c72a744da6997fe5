package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/orchestrator"
)

type SelectionController struct {
	orch *orchestrator.Orchestrator
}

func NewSelectionController(orch *orchestrator.Orchestrator) *SelectionController {
	return &SelectionController{orch: orch}
}

func (ctrl *SelectionController) view() gin.H {
	sel := ctrl.orch.Selection()
	return gin.H{"selected": sel.IDs(), "size": sel.Size(), "total": ctrl.orch.Store().Len()}
}

// GET /api/self/v1/selection
func (ctrl *SelectionController) HandleGet(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.view())
}

// POST /api/self/v1/selection/:fileId
func (ctrl *SelectionController) HandleToggle(c *gin.Context) {
	if _, err := ctrl.orch.Selection().Toggle(c.Param("fileId")); err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, ctrl.view())
}

// HandleToggleAll selects everything, or clears when everything is already selected.
// POST /api/self/v1/selection/all
func (ctrl *SelectionController) HandleToggleAll(c *gin.Context) {
	ctrl.orch.Selection().ToggleAll()
	c.JSON(http.StatusOK, ctrl.view())
}

// DELETE /api/self/v1/selection
func (ctrl *SelectionController) HandleClear(c *gin.Context) {
	ctrl.orch.Selection().Clear()
	c.JSON(http.StatusOK, ctrl.view())
}
