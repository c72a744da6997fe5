package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
	"github.com/moyoez/moneylens-go/validate"
)

type UploadController struct {
	orch *orchestrator.Orchestrator
}

func NewUploadController(orch *orchestrator.Orchestrator) *UploadController {
	return &UploadController{orch: orch}
}

// HandleUpload submits one PDF. Form fields: file, mode (auto, text or ocr).
// POST /api/self/v1/upload
func (ctrl *UploadController) HandleUpload(c *gin.Context) {
	mode := types.ParseMode(c.DefaultPostForm("mode", string(types.ParseModeAuto)))
	// the pipeline is not cancelable; a closed browser tab does not abort it
	ctx := context.WithoutCancel(c.Request.Context())

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["file"]
	}
	switch len(files) {
	case 0:
		_, err := ctrl.orch.SubmitFile(ctx, nil, mode)
		respondError(c, err, orchestrator.MsgPipelineFailed)
		return
	case 1:
	default:
		c.JSON(http.StatusBadRequest, tool.FastReturnErrors(MsgValidationFailed, []string{validate.MsgTooManyFile}))
		return
	}

	dir, err := os.MkdirTemp("", "moneylens-upload-*")
	if err != nil {
		tool.DefaultLogger.Errorf("[Upload] failed to create temp dir: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Internal server error"))
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			tool.DefaultLogger.Warnf("[Upload] failed to remove %s: %v", dir, err)
		}
	}()

	name := filepath.Base(files[0].Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload.pdf"
	}
	path := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(files[0], path); err != nil {
		tool.DefaultLogger.Errorf("[Upload] failed to save %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to save uploaded file"))
		return
	}

	result, err := ctrl.orch.Submit(ctx, path, mode)
	if err != nil {
		respondError(c, err, orchestrator.MsgPipelineFailed)
		return
	}
	c.JSON(http.StatusOK, result)
}
