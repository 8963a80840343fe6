package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// Client represents an HTTP client with customizable options
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new HTTP client with the given options
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithBaseURL sets the base URL for the client. Without one, request paths
// must be absolute URLs.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the timeout for the client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// Do executes an HTTP request and returns the response with detailed timing information
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.Build(c.baseURL)
	if err != nil {
		return nil, err
	}

	// Client headers never override request headers
	for key, value := range c.headers {
		if httpReq.Header.Get(key) == "" {
			httpReq.Header.Set(key, value)
		}
	}

	timing := TimingInfo{
		StartTime: time.Now(),
	}

	var dnsStart, connectStart, tlsStart time.Time
	// lastPhaseEnd tracks the end of the last completed phase
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			lastPhaseEnd = time.Now()
			timing.DNSLookupTime = lastPhaseEnd.Sub(dnsStart)
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TCPConnectTime = lastPhaseEnd.Sub(connectStart)
			}
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil {
				lastPhaseEnd = time.Now()
				timing.TLSHandshakeTime = lastPhaseEnd.Sub(tlsStart)
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}

	httpReq = httpReq.WithContext(httptrace.WithClientTrace(ctx, trace))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	contentTransferStart := time.Now()
	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	timing.ContentTransferTime = time.Since(contentTransferStart)
	timing.TotalTime = time.Since(timing.StartTime)

	resp := &Response{
		StatusCode:   httpResp.StatusCode,
		Status:       httpResp.Status,
		Headers:      httpResp.Header,
		Body:         io.NopCloser(bytes.NewReader(bodyBytes)),
		ResponseTime: timing.TotalTime,
		Timing:       timing,
		rawBody:      bodyBytes,
		parsed:       true,
	}

	return resp, nil
}
