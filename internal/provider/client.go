// Package provider implements the data provider clients and the fallback
// resolver shared by every feature capability.
package provider

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout applies to most provider calls.
	DefaultTimeout = 10 * time.Second
	// TextGenTimeout applies to text-generation providers, which are slow.
	TextGenTimeout = 30 * time.Second

	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
	defaultResponseTimeout = 10 * time.Second
	maxResponseBytes       = 4 << 20
)

// NewHTTPClient returns an HTTP client tuned for public JSON APIs. The
// overall deadline comes from the per-call context, not the client.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ResponseHeaderTimeout: defaultResponseTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// Request describes one provider call.
type Request struct {
	Name    string
	Method  string
	URL     string
	Header  http.Header
	Body    string
	Timeout time.Duration
}

// Client issues a single HTTP request to one provider with a fixed timeout.
type Client struct {
	http *http.Client
}

// NewClient wraps an HTTP client; pass nil to use the tuned default.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{http: httpClient}
}

// Fetch performs the request and returns the raw body or a typed FetchError.
// It never panics and never returns both a body and an error.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, *FetchError) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &FetchError{Provider: req.Name, Kind: KindNetwork, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", "universebot/1.0")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &FetchError{Provider: req.Name, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &FetchError{Provider: req.Name, Kind: KindHTTP, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{Provider: req.Name, Kind: classify(err), Err: err}
	}
	return data, nil
}
