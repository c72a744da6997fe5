package controllers

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
)

type ResultsController struct {
	orch *orchestrator.Orchestrator
}

func NewResultsController(orch *orchestrator.Orchestrator) *ResultsController {
	return &ResultsController{orch: orch}
}

// HandleList returns every result, newest first. ?format=msgpack switches the encoding.
// GET /api/self/v1/results
func (ctrl *ResultsController) HandleList(c *gin.Context) {
	results := ctrl.orch.Store().Results()
	if c.Query("format") != "msgpack" {
		c.JSON(http.StatusOK, gin.H{"results": results, "selected": ctrl.orch.Selection().IDs()})
		return
	}

	// msgpack carries the same shape as the JSON view, money values as numbers
	raw, err := sonic.Marshal(gin.H{"results": results, "selected": ctrl.orch.Selection().IDs()})
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode results"))
		return
	}
	var plain any
	if err := sonic.Unmarshal(raw, &plain); err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode results"))
		return
	}
	data, err := msgpack.Marshal(plain)
	if err != nil {
		tool.DefaultLogger.Errorf("[Results] msgpack encode failed: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode results"))
		return
	}
	c.Data(http.StatusOK, "application/msgpack", data)
}

// HandleGet returns one result.
// GET /api/self/v1/results/:fileId
func (ctrl *ResultsController) HandleGet(c *gin.Context) {
	result, ok := ctrl.orch.Store().Get(c.Param("fileId"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError(orchestrator.ErrUnknownResult.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleReload rebuilds the store from the API.
// POST /api/self/v1/results/reload
func (ctrl *ResultsController) HandleReload(c *gin.Context) {
	report, err := ctrl.orch.Reload(c.Request.Context(), nil)
	if err != nil {
		respondError(c, err, orchestrator.MsgReloadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listed": report.Listed,
		"loaded": report.Loaded,
		"failed": report.FailedIDs(),
	})
}

// HandleRemove deletes a result. The caller confirms with ?confirm=true.
// DELETE /api/self/v1/results/:fileId
func (ctrl *ResultsController) HandleRemove(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"
	err := ctrl.orch.Remove(c.Request.Context(), c.Param("fileId"), func(string) bool { return confirmed })
	if err != nil {
		respondError(c, err, orchestrator.MsgDeleteFailed)
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}
