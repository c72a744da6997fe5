package tool

import (
	"net/http"
	"time"
)

var (
	DefaultTimeout = 30 * time.Second
	APIHttpClient  *http.Client
)

func init() {
	APIHttpClient = NewHTTPClient(DefaultTimeout)
}

// NewHTTPClient creates the client used for every call to the MoneyLens API.
// timeout bounds the whole exchange, body included; <= 0 means DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// InitHTTPClient (re)initializes the shared API client, e.g. after the config changed the timeout.
func InitHTTPClient(timeout time.Duration) {
	APIHttpClient = NewHTTPClient(timeout)
}

func GetHttpClient() *http.Client {
	return APIHttpClient
}

// NewHTTPReqWithApplication sets the JSON content headers on a freshly built request.
func NewHTTPReqWithApplication(req *http.Request, err error) (*http.Request, error) {
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
