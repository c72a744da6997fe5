package transfer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

// Process asks the API to extract text and totals from an uploaded file.
func (c *Client) Process(ctx context.Context, fileID string) (*types.ProcessingResult, error) {
	return c.fetchResult(ctx, "process", http.MethodPost, fileID)
}

// GetResult fetches the stored result of an already processed file.
func (c *Client) GetResult(ctx context.Context, fileID string) (*types.ProcessingResult, error) {
	return c.fetchResult(ctx, "result", http.MethodGet, fileID)
}

func (c *Client) fetchResult(ctx context.Context, op, method, fileID string) (*types.ProcessingResult, error) {
	if fileID == "" {
		return nil, fmt.Errorf("invalid parameters: fileID must not be empty")
	}
	req, err := tool.NewHTTPReqWithApplication(c.newRequest(ctx, method, tool.BuildAPIURL(c.base, op, fileID), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	var out types.ProcessingResult
	if err := c.doJSON(op, req, &out); err != nil {
		return nil, err
	}
	if out.FileID == "" {
		out.FileID = fileID
	}
	out.Normalize()
	return &out, nil
}

// ListFiles returns every processed file known to the API, newest first.
func (c *Client) ListFiles(ctx context.Context) (*types.FileListResponse, error) {
	req, err := tool.NewHTTPReqWithApplication(c.newRequest(ctx, http.MethodGet, tool.BuildAPIURL(c.base, "files"), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create files request: %w", err)
	}
	var out types.FileListResponse
	if err := c.doJSON("files", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFile removes a file and its result on the API side.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("invalid parameters: fileID must not be empty")
	}
	req, err := tool.NewHTTPReqWithApplication(c.newRequest(ctx, http.MethodDelete, tool.BuildAPIURL(c.base, "file", fileID), nil))
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	var out types.DeleteResponse
	if err := c.doJSON("delete", req, &out); err != nil {
		return err
	}
	tool.DefaultLogger.Infof("Deleted %s: %s", fileID, out.Message)
	return nil
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	req, err := tool.NewHTTPReqWithApplication(c.newRequest(ctx, http.MethodGet, tool.BuildAPIURL(c.base, "health"), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}
	var out types.HealthResponse
	if err := c.doJSON("health", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
