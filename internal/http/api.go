package http

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StatusError is returned when a response falls outside the 2xx range
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

// ResponseDecodeError is returned when a 2xx body is not valid JSON
type ResponseDecodeError struct {
	URL string
	Err error
}

func (e *ResponseDecodeError) Error() string {
	return fmt.Sprintf("decode response of %s: %v", e.URL, e.Err)
}

func (e *ResponseDecodeError) Unwrap() error {
	return e.Err
}

// usesQuery reports whether a method carries its payload in the query string
func usesQuery(method string) bool {
	switch method {
	case "GET", "DELETE", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// Call sends payload to rawURL and decodes the JSON response. GET-like
// methods send payload as query parameters, the others as a JSON body. A
// non-empty token is sent as a bearer Authorization header. Non-2xx
// responses return the response together with a *StatusError.
func (c *Client) Call(ctx context.Context, method, rawURL string, payload any, headers map[string]string, token string) (*Response, any, error) {
	req := NewRequest(method, rawURL).WithHeaders(headers)
	if token != "" {
		req.WithHeader("Authorization", "Bearer "+token)
	}

	if payload != nil {
		if usesQuery(req.Method) {
			params, ok := payload.(map[string]any)
			if !ok {
				return nil, nil, fmt.Errorf("%s parameters must be an object, got %T", req.Method, payload)
			}
			req.WithQueryValues(params)
		} else {
			req.WithBody(payload)
		}
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	body, _ := resp.GetBody()
	if !resp.IsSuccess() {
		return resp, nil, &StatusError{
			Method:     req.Method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	parsed, err := DecodeJSON(body)
	if err != nil {
		return resp, nil, &ResponseDecodeError{URL: rawURL, Err: err}
	}
	return resp, parsed, nil
}

// Get sends a GET request with params as the query string and returns the
// decoded JSON response.
func (c *Client) Get(ctx context.Context, url string, params map[string]any, headers map[string]string, token string) (any, error) {
	var payload any
	if params != nil {
		payload = params
	}
	_, parsed, err := c.Call(ctx, "GET", url, payload, headers, token)
	return parsed, err
}

// Post sends data as a JSON body and returns the decoded JSON response
func (c *Client) Post(ctx context.Context, url string, data any, headers map[string]string, token string) (any, error) {
	_, parsed, err := c.Call(ctx, "POST", url, data, headers, token)
	return parsed, err
}

// DecodeJSON decodes body; an empty body decodes to nil
func DecodeJSON(body []byte) (any, error) {
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
