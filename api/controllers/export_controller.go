package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

type ExportController struct {
	orch *orchestrator.Orchestrator
}

func NewExportController(orch *orchestrator.Orchestrator) *ExportController {
	return &ExportController{orch: orch}
}

// HandleSelected exports the selection. Body: {"includeText": bool, "includeMetadata": bool}.
// POST /api/self/v1/export/selected
func (ctrl *ExportController) HandleSelected(c *gin.Context) {
	var opts types.ExportOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
			return
		}
	}
	ctrl.respond(c, orchestrator.MsgExportFailed, func(ctx context.Context) (*types.Artifact, error) {
		return ctrl.orch.ExportSelected(ctx, opts)
	})
}

// POST /api/self/v1/export/summary
func (ctrl *ExportController) HandleSummary(c *gin.Context) {
	ctrl.respond(c, orchestrator.MsgSummaryFailed, ctrl.orch.ExportSummary)
}

// POST /api/self/v1/export/transactions
func (ctrl *ExportController) HandleTransactions(c *gin.Context) {
	ctrl.respond(c, orchestrator.MsgTransactionsFailed, ctrl.orch.ExportTransactions)
}

// respond returns the artifact description, or the file itself with ?download=true.
func (ctrl *ExportController) respond(c *gin.Context, fallback string, export func(context.Context) (*types.Artifact, error)) {
	artifact, err := export(c.Request.Context())
	if err != nil {
		respondError(c, err, fallback)
		return
	}
	if c.Query("download") == "true" && artifact.Path != "" {
		c.FileAttachment(artifact.Path, artifact.FileName)
		return
	}
	c.JSON(http.StatusOK, artifact)
}
