package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// TimingInfo holds the phases of one request, measured with httptrace
type TimingInfo struct {
	StartTime           time.Time
	DNSLookupTime       time.Duration
	TCPConnectTime      time.Duration
	TLSHandshakeTime    time.Duration
	TimeToFirstByte     time.Duration
	ContentTransferTime time.Duration
	TotalTime           time.Duration
}

// Response represents an HTTP response
type Response struct {
	StatusCode   int
	Status       string
	Headers      http.Header
	Body         io.ReadCloser
	ResponseTime time.Duration
	Timing       TimingInfo
	rawBody      []byte
	parsed       bool
}

// GetBody returns the response body as a byte array
func (r *Response) GetBody() ([]byte, error) {
	if r.parsed {
		return r.rawBody, nil
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.rawBody = body
	r.parsed = true

	return body, nil
}

// GetBodyAsString returns the response body as a string
func (r *Response) GetBodyAsString() (string, error) {
	body, err := r.GetBody()
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetBodyAsJSON unmarshals the response body into the provided interface
func (r *Response) GetBodyAsJSON(v interface{}) error {
	body, err := r.GetBody()
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// GetResponseTimeMillis returns the response time in milliseconds
func (r *Response) GetResponseTimeMillis() int64 {
	return r.ResponseTime.Milliseconds()
}

// GetTimeToFirstByteMillis returns the time to first byte in milliseconds
func (r *Response) GetTimeToFirstByteMillis() int64 {
	return r.Timing.TimeToFirstByte.Milliseconds()
}

// GetTotalTimeMillis returns the total request time in milliseconds
func (r *Response) GetTotalTimeMillis() int64 {
	return r.Timing.TotalTime.Milliseconds()
}
