package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Request represents an HTTP request
type Request struct {
	Method      string
	Path        string
	QueryParams url.Values
	Headers     map[string]string
	Body        interface{}
}

// NewRequest creates a new HTTP request. Path may be a path relative to the
// client base URL or an absolute URL.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:      strings.ToUpper(method),
		Path:        path,
		QueryParams: make(url.Values),
		Headers:     make(map[string]string),
	}
}

// WithHeader adds a header to the request. Names are stored in canonical
// form, so a later x-tenant replaces an earlier X-Tenant.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[http.CanonicalHeaderKey(key)] = value
	return r
}

// WithHeaders adds multiple headers to the request
func (r *Request) WithHeaders(headers map[string]string) *Request {
	for key, value := range headers {
		r.WithHeader(key, value)
	}
	return r
}

// WithQueryParam adds a query parameter to the request
func (r *Request) WithQueryParam(key, value string) *Request {
	r.QueryParams.Add(key, value)
	return r
}

// WithQueryValues adds decoded JSON parameters as query values. Sequences
// become repeated keys, nested objects are sent as JSON text.
func (r *Request) WithQueryValues(params map[string]any) *Request {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch value := params[key].(type) {
		case []any:
			for _, item := range value {
				r.QueryParams.Add(key, queryString(item))
			}
		default:
			r.QueryParams.Add(key, queryString(value))
		}
	}
	return r
}

func queryString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case map[string]any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	default:
		return fmt.Sprint(value)
	}
}

// WithBody sets the body of the request
func (r *Request) WithBody(body interface{}) *Request {
	r.Body = body
	return r
}

// URL returns the full request URL for baseURL
func (r *Request) URL(baseURL string) (*url.URL, error) {
	var reqURL *url.URL
	var err error

	if baseURL == "" {
		reqURL, err = url.Parse(r.Path)
		if err != nil {
			return nil, err
		}
	} else {
		reqURL, err = url.Parse(baseURL)
		if err != nil {
			return nil, err
		}

		// Join the base URL path with the request path
		if reqURL.Path == "" {
			reqURL.Path = r.Path
		} else {
			reqURL.Path = strings.TrimRight(reqURL.Path, "/") + "/" + strings.TrimLeft(r.Path, "/")
		}
	}

	// Add query parameters
	if len(r.QueryParams) > 0 {
		query := reqURL.Query()
		for key, values := range r.QueryParams {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		reqURL.RawQuery = query.Encode()
	}

	return reqURL, nil
}

// Build constructs an http.Request from the Request
func (r *Request) Build(baseURL string) (*http.Request, error) {
	reqURL, err := r.URL(baseURL)
	if err != nil {
		return nil, err
	}

	// Prepare the body
	var bodyReader io.Reader
	isJSON := false
	if r.Body != nil {
		switch body := r.Body.(type) {
		case string:
			bodyReader = strings.NewReader(body)
		case []byte:
			bodyReader = bytes.NewReader(body)
		case io.Reader:
			bodyReader = body
		default:
			// Assume JSON for other types
			jsonBody, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			bodyReader = bytes.NewReader(jsonBody)
			isJSON = true
		}
	}

	req, err := http.NewRequest(r.Method, reqURL.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}
	// Set Content-Type to application/json if not already set
	if isJSON && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
