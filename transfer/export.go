package transfer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

// ExportSelected posts the selected ids and options and returns the CSV bytes.
func (c *Client) ExportSelected(ctx context.Context, request types.ExportRequest) ([]byte, error) {
	if len(request.FileIDs) == 0 {
		return nil, fmt.Errorf("invalid parameters: file_ids must not be empty")
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, tool.BuildAPIURL(c.base, "export", "csv"), request)
	if err != nil {
		return nil, fmt.Errorf("failed to create export request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	return c.do("export", req)
}

// ExportSummary returns the one-row-per-file summary CSV of every stored result.
func (c *Client) ExportSummary(ctx context.Context) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, tool.BuildAPIURL(c.base, "export", "csv", "summary"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary export request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	return c.do("summary export", req)
}

// ExportTransactions renders the given transactions as CSV (single-call protocol).
func (c *Client) ExportTransactions(ctx context.Context, transactions []types.Transaction) ([]byte, error) {
	if transactions == nil {
		transactions = []types.Transaction{}
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, tool.BuildAPIURL(c.base, "export", "csv"), types.ExportTransactionsRequest{Transactions: transactions})
	if err != nil {
		return nil, fmt.Errorf("failed to create transactions export request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	return c.do("transactions export", req)
}
