package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/validate"
)

const MsgValidationFailed = "Validation failed"

// respondError maps orchestrator errors onto status codes. Remote failures become 502 with
// the same message the error banner shows.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, tool.FastReturnErrors(MsgValidationFailed, verr.Messages))
	case errors.Is(err, orchestrator.ErrBusy):
		c.JSON(http.StatusConflict, tool.FastReturnError("Another file is being processed"))
	case errors.Is(err, orchestrator.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, tool.FastReturnError("No results selected"))
	case errors.Is(err, orchestrator.ErrNotConfirmed):
		c.JSON(http.StatusPreconditionRequired, tool.FastReturnError("Deletion must be confirmed with confirm=true"))
	case errors.Is(err, orchestrator.ErrUnknownResult), errors.Is(err, orchestrator.ErrNoResults):
		c.JSON(http.StatusNotFound, tool.FastReturnError(err.Error()))
	case errors.Is(err, orchestrator.ErrUnsupported):
		c.JSON(http.StatusNotImplemented, tool.FastReturnError(err.Error()))
	default:
		c.JSON(http.StatusBadGateway, tool.FastReturnError(orchestrator.UserMessage(err, fallback)))
	}
}
