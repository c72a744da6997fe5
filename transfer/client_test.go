package transfer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/moneylens-go/types"
)

func newTestClient(t *testing.T, setup func(r *gin.RouterGroup)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	setup(engine.Group("/api"))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/api", srv.Client())
	require.NoError(t, err)
	return c
}

func writePDF(t *testing.T) *types.LocalFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%test\n"), 0o644))
	return &types.LocalFile{Path: path, FileName: "statement.pdf", Size: 15, FileType: "application/pdf"}
}

func TestUploadSendsMultipartForm(t *testing.T) {
	var gotMode, gotName, gotType, gotReqID string
	var gotBody []byte
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.POST("/upload", func(ctx *gin.Context) {
			gotMode = ctx.PostForm("mode")
			gotReqID = ctx.GetHeader(RequestIDHeader)
			fh, err := ctx.FormFile("file")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			gotName = fh.Filename
			gotType = fh.Header.Get("Content-Type")
			f, _ := fh.Open()
			gotBody, _ = io.ReadAll(f)
			_ = f.Close()
			ctx.JSON(http.StatusOK, gin.H{"file_id": "abc", "filename": fh.Filename, "size": fh.Size})
		})
	})

	ctx := WithRequestID(context.Background(), "req-1")
	resp, err := c.Upload(ctx, writePDF(t), types.ParseModeOCR)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.FileID)
	assert.Equal(t, "ocr", gotMode)
	assert.Equal(t, "statement.pdf", gotName)
	assert.Equal(t, "application/pdf", gotType)
	assert.Equal(t, "req-1", gotReqID)
	assert.Equal(t, "%PDF-1.4\n%test\n", string(gotBody))
}

func TestUploadMissingFileID(t *testing.T) {
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.POST("/upload", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"filename": "x.pdf"})
		})
	})
	_, err := c.Upload(context.Background(), writePDF(t), "")
	require.Error(t, err)
}

func TestProcessNormalizesResult(t *testing.T) {
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.POST("/process/:id", func(ctx *gin.Context) {
			ctx.Data(http.StatusOK, "application/json", []byte(`{
				"file_id": "`+ctx.Param("id")+`",
				"filename": "a.pdf",
				"processing_time": -1,
				"parsed_text": {"text": "Total $1,234.56", "method": "text"},
				"totals": [
					{"label": "Total", "value": 1234.56, "currency": "", "line_number": 0},
					{"label": "Tax", "value": "10.00", "currency": "EUR", "line_number": 3}
				]
			}`))
		})
	})

	res, err := c.Process(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", res.FileID)
	assert.Equal(t, 0.0, res.ProcessingTime)
	require.Len(t, res.Totals, 2)
	assert.Equal(t, "Total", res.Totals[0].Label)
	assert.True(t, res.Totals[0].Value.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, types.DefaultCurrency, res.Totals[0].Currency)
	assert.Nil(t, res.Totals[0].LineNumber)
	assert.Equal(t, "EUR", res.Totals[1].Currency)
	require.NotNil(t, res.Totals[1].LineNumber)
	assert.Equal(t, 3, *res.Totals[1].LineNumber)
	assert.NotNil(t, res.Metadata)
}

func TestRemoteErrorDetail(t *testing.T) {
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.GET("/result/:id", func(ctx *gin.Context) {
			ctx.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
		})
		r.POST("/process/:id", func(ctx *gin.Context) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "field required"}, {"msg": "bad mode"}}})
		})
		r.DELETE("/file/:id", func(ctx *gin.Context) {
			ctx.Status(http.StatusInternalServerError)
		})
	})

	_, err := c.GetResult(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "File not found", DetailOf(err))

	_, err = c.Process(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "field required; bad mode", DetailOf(err))

	err = c.DeleteFile(context.Background(), "x")
	require.Error(t, err)
	assert.Empty(t, DetailOf(err))
	assert.Contains(t, err.Error(), "remote service error")
}

func TestEscapedFileID(t *testing.T) {
	var got string
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.GET("/result/:id", func(ctx *gin.Context) {
			got = ctx.Param("id")
			ctx.JSON(http.StatusOK, gin.H{"file_id": got, "filename": "a.pdf", "totals": []any{}})
		})
	})
	_, err := c.GetResult(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "a b", got)
}

func TestExportSelectedPostsIDs(t *testing.T) {
	var req types.ExportRequest
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.POST("/export/csv", func(ctx *gin.Context) {
			if err := ctx.ShouldBindJSON(&req); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			ctx.Data(http.StatusOK, "text/csv", []byte("file_id,filename\nf1,a.pdf\n"))
		})
	})

	data, err := c.ExportSelected(context.Background(), types.ExportRequest{FileIDs: []string{"f1", "f2"}, IncludeText: true})
	require.NoError(t, err)
	assert.Equal(t, "file_id,filename\nf1,a.pdf\n", string(data))
	assert.Equal(t, []string{"f1", "f2"}, req.FileIDs)
	assert.True(t, req.IncludeText)
	assert.False(t, req.IncludeMetadata)

	_, err = c.ExportSelected(context.Background(), types.ExportRequest{})
	require.Error(t, err)
}

func TestParseSingleCall(t *testing.T) {
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.POST("/parse/pdf", func(ctx *gin.Context) {
			ctx.Data(http.StatusOK, "application/json", []byte(`{
				"totals": {"inflow": 100, "outflow": -40.5, "net": 59.5, "flow_volume": 140.5},
				"transactions": [
					{"date": "2024-01-02", "description": "Salary", "amount": 100, "type": "credit", "balance": null},
					{"date": "2024-01-03", "description": "Coffee", "amount": -40.5, "type": "debit", "balance": 59.5}
				],
				"metadata": {"method": "text"}
			}`))
		})
	})

	res, err := c.Parse(context.Background(), writePDF(t), types.ParseModeAuto)
	require.NoError(t, err)
	assert.True(t, res.Totals.Net.Equal(decimal.RequireFromString("59.5")))
	require.Len(t, res.Transactions, 2)
	assert.False(t, res.Transactions[0].Balance.Valid)
	assert.True(t, res.Transactions[1].Balance.Valid)
	assert.Equal(t, "text", res.Metadata["method"])
}

func TestHealthAndListFiles(t *testing.T) {
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "version": "1.0.0"})
		})
		r.GET("/files", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"files": []gin.H{{"file_id": "b"}, {"file_id": "a"}}})
		})
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)

	files, err := c.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files.Files, 2)
	assert.Equal(t, "b", files.Files[0].FileID)
}

func TestCanceledRequest(t *testing.T) {
	c := newTestClient(t, func(r *gin.RouterGroup) {
		r.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Health(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
