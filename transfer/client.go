// Package transfer is the HTTP client for the remote MoneyLens API.
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/moyoez/moneylens-go/tool"
)

// RequestIDHeader carries the submission correlation id to the API.
const RequestIDHeader = "X-Request-ID"

func init() {
	// the API is FastAPI/pydantic and expects JSON numbers for money fields
	decimal.MarshalJSONWithoutQuotes = true
}

// Client talks to one MoneyLens API base URL. It implements both the multi-step
// protocol (upload, process, result, files, export, delete, health) and the
// single-call protocol (parse, transactions export).
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

// NewClient resolves apiBase (relative bases go to tool.DefaultAPIOrigin).
// A nil httpClient uses tool.GetHttpClient().
func NewClient(apiBase string, httpClient *http.Client) (*Client, error) {
	base, err := tool.ResolveAPIBase(apiBase)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = tool.GetHttpClient()
	}
	return &Client{base: base, httpClient: httpClient}, nil
}

// BaseURL returns the resolved API base.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id that is sent on every request made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id set by WithRequestID, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if id := RequestIDFrom(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, target string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return tool.NewHTTPReqWithApplication(c.newRequest(ctx, method, target, body))
}

// do sends req and returns the body of a 2xx response. Anything else is a *RemoteError.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s request aborted: %w", op, ctxErr)
		}
		return nil, fmt.Errorf("failed to send %s request: %w", op, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, readErr)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newRemoteError(op, resp.StatusCode, resp.Status, body)
	}
	tool.DefaultLogger.Debugf("%s %s -> %s (%d bytes)", req.Method, req.URL.Redacted(), resp.Status, len(body))
	return body, nil
}

func (c *Client) doJSON(op string, req *http.Request, out any) error {
	body, err := c.do(op, req)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return fmt.Errorf("%s response body is empty", op)
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", op, err)
	}
	return nil
}
