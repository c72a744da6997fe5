package transfer

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

// Upload sends the file to POST /upload and returns the remote file id.
func (c *Client) Upload(ctx context.Context, file *types.LocalFile, mode types.ParseMode) (*types.UploadResponse, error) {
	if file == nil {
		return nil, fmt.Errorf("invalid parameters: file must not be nil")
	}
	req, err := c.newMultipartRequest(ctx, tool.BuildAPIURL(c.base, "upload"), file, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	var out types.UploadResponse
	if err := c.doJSON("upload", req, &out); err != nil {
		return nil, err
	}
	if out.FileID == "" {
		return nil, fmt.Errorf("upload response missing file_id")
	}
	tool.DefaultLogger.Infof("Uploaded %s as %s", file.FileName, out.FileID)
	return &out, nil
}

// Parse runs the single-call protocol: POST /parse/pdf with the file and mode.
func (c *Client) Parse(ctx context.Context, file *types.LocalFile, mode types.ParseMode) (*types.StatementResult, error) {
	if file == nil {
		return nil, fmt.Errorf("invalid parameters: file must not be nil")
	}
	req, err := c.newMultipartRequest(ctx, tool.BuildAPIURL(c.base, "parse", "pdf"), file, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse request: %w", err)
	}
	var out types.StatementResult
	if err := c.doJSON("parse", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// newMultipartRequest builds a form with "file" (sent as application/pdf when sniffed so)
// and "mode". Files are capped at 10 MiB upstream, so the body is built in memory.
func (c *Client) newMultipartRequest(ctx context.Context, target string, file *types.LocalFile, mode types.ParseMode) (*http.Request, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := file.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.FileName)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := tool.CopyWithContext(ctx, part, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Path, err)
	}
	if mode != "" {
		if err := w.WriteField("mode", string(mode)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
