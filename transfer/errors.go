package transfer

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// RemoteError is a non-2xx answer from the API.
type RemoteError struct {
	Op         string
	StatusCode int
	Status     string
	// Detail is the server-supplied explanation ("detail" or "error" field), if any.
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s failed (%d): %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, statusText(e.StatusCode, e.Status))
}

func statusText(code int, status string) string {
	switch code {
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusNotFound:
		return "not found"
	case http.StatusRequestEntityTooLarge:
		return "file too large"
	case http.StatusUnprocessableEntity:
		return "request rejected by validation"
	case http.StatusInternalServerError:
		return "remote service error"
	default:
		if status == "" {
			return http.StatusText(code)
		}
		return status
	}
}

func newRemoteError(op string, code int, status string, body []byte) *RemoteError {
	return &RemoteError{Op: op, StatusCode: code, Status: status, Detail: extractDetail(body)}
}

// extractDetail reads FastAPI-style error bodies: {"detail": "..."}, {"detail": [{"msg": ...}]}
// or {"error": "..."}.
func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch d := payload.Detail.(type) {
	case string:
		if d != "" {
			return d
		}
	case []any:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok && msg != "" {
					msgs = append(msgs, msg)
				}
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return payload.Error
}

// DetailOf returns the server-supplied detail carried by err, or "".
func DetailOf(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Detail
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound
}
