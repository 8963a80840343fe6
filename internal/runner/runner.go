// Package runner executes data-driven test cases against an HTTP API and
// aggregates their outcomes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wesleyorama2/caserun/internal/config"
	"github.com/wesleyorama2/caserun/internal/http"
	"github.com/wesleyorama2/caserun/internal/testdata"
	"github.com/wesleyorama2/caserun/pkg/jsonschema"
)

var supportedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
}

// Runner executes test cases one after another against an HTTP API
type Runner struct {
	client     *http.Client
	interfaces *config.InterfaceConfig
	logger     *zap.Logger
	env        string
	token      string
	limiter    *rate.Limiter
	observer   func(Result)

	defaultTimeout time.Duration
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger for per-case diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEnv selects the environment used to resolve URLs. Empty means the
// current environment of the interface config.
func WithEnv(env string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithToken sets the bearer token sent when a case has none of its own
func WithToken(token string) Option {
	return func(r *Runner) {
		r.token = token
	}
}

// WithRate limits the run to perSecond cases per second. Zero disables
// pacing.
func WithRate(perSecond float64) Option {
	return func(r *Runner) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			r.limiter = nil
		}
	}
}

// WithDefaultTimeout bounds each request whose interface sets no timeout.
// Zero leaves such requests unbounded.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.defaultTimeout = timeout
	}
}

// WithObserver registers fn to receive every result as soon as its case
// finishes.
func WithObserver(fn func(Result)) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}

// New creates a runner. interfaces may be nil when no case refers to a
// module and interface.
func New(client *http.Client, interfaces *config.InterfaceConfig, options ...Option) *Runner {
	if interfaces == nil {
		interfaces = config.NewInterfaceConfig()
	}
	r := &Runner{
		client:     client,
		interfaces: interfaces,
		logger:     zap.NewNop(),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Run executes cases in order. It only returns an error when ctx ends
// before every case ran; the report then covers the cases already run.
func (r *Runner) Run(ctx context.Context, cases []testdata.TestCase) (*Report, error) {
	report := &Report{Results: make([]Result, 0, len(cases))}
	latency := newLatencyRecorder()
	start := time.Now()

	finish := func() {
		report.Summary.Duration = time.Since(start)
		report.Summary.Latency = latency.stats()
	}

	for _, tc := range cases {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				finish()
				return report, err
			}
		}
		if err := ctx.Err(); err != nil {
			finish()
			return report, err
		}

		result := r.RunCase(ctx, tc)
		if result.Response != nil {
			latency.record(result.Response.ResponseTime)
		}

		report.Results = append(report.Results, result)
		report.Summary.add(result)
		if r.observer != nil {
			r.observer(result)
		}
	}

	finish()
	r.logger.Info("run finished",
		zap.Int("total", report.Summary.Total),
		zap.Int("passed", report.Summary.Passed),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Int("errored", report.Summary.Errored),
		zap.Duration("duration", report.Summary.Duration))
	return report, nil
}

// plan is the request derived from a case and its interface definition
type plan struct {
	method         string
	url            string
	headers        map[string]string
	params         any
	expected       map[string]any
	expectedStatus int
	schema         any
	token          string
	timeout        time.Duration
}

// RunCase executes a single case
func (r *Runner) RunCase(ctx context.Context, tc testdata.TestCase) (result Result) {
	start := time.Now()
	result = Result{CaseID: tc.ID(), Description: tc.Description()}
	defer func() {
		result.Duration = time.Since(start)
	}()

	p, err := r.plan(tc)
	if err != nil {
		return r.errored(result, err)
	}
	result.Method = p.method
	result.URL = p.url
	result.Params = p.params

	logger := r.logger.With(zap.String("case_id", result.CaseID))
	logger.Info("running case",
		zap.String("description", result.Description),
		zap.String("method", p.method),
		zap.String("url", p.url),
		zap.Any("params", p.params))

	if !supportedMethods[p.method] {
		result.Status = StatusSkipped
		result.Reason = fmt.Sprintf("unsupported request method: %s", p.method)
		logger.Warn("case skipped", zap.String("reason", result.Reason))
		return result
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, parsed, err := r.client.Call(ctx, p.method, p.url, p.params, p.headers, p.token)
	result.Response = resp

	var statusErr *http.StatusError
	switch {
	case errors.As(err, &statusErr) && p.expectedStatus == statusErr.StatusCode:
		// A non-2xx status was asked for; its body may still be checked
		parsed, err = http.DecodeJSON(statusErr.Body)
		if err != nil && len(p.expected) > 0 {
			return r.errored(result, &http.ResponseDecodeError{URL: p.url, Err: err})
		}
	case errors.As(err, &statusErr) && p.expectedStatus != 0:
		// Reported as a failed status assertion below
	case err != nil:
		return r.errored(result, err)
	}
	result.Body = parsed

	var body []byte
	if resp != nil {
		body, _ = resp.GetBody()
	}
	logger.Debug("response received", zap.ByteString("body", body))

	if p.expectedStatus != 0 && resp != nil {
		result.Assertions = append(result.Assertions, checkStatus(p.expectedStatus, resp.StatusCode))
	}
	result.Assertions = append(result.Assertions, checkExpected(p.expected, parsed, body)...)

	if p.schema != nil {
		err := jsonschema.Validate(parsed, p.schema)
		var schemaErr *jsonschema.SchemaError
		if errors.As(err, &schemaErr) {
			return r.errored(result, err)
		}
		a := Assertion{Name: "schema", Passed: err == nil}
		if err != nil {
			a.Message = err.Error()
		}
		result.Assertions = append(result.Assertions, a)
	}

	result.Status = StatusPassed
	for _, a := range result.FailedAssertions() {
		result.Status = StatusFailed
		logger.Warn("assertion failed", zap.String("assertion", a.Name), zap.String("message", a.Message))
	}
	return result
}

func (r *Runner) errored(result Result, err error) Result {
	result.Status = StatusErrored
	result.Err = err
	r.logger.Error("case errored", zap.String("case_id", result.CaseID), zap.Error(err))
	return result
}

// plan merges the case over its interface definition. Case fields win.
func (r *Runner) plan(tc testdata.TestCase) (*plan, error) {
	p := &plan{headers: make(map[string]string), token: r.token}

	if tc.Has(testdata.FieldModule) || tc.Has(testdata.FieldInterface) {
		def, err := r.interfaces.GetInterfaceInfo(tc.String(testdata.FieldModule), tc.String(testdata.FieldInterface), r.env)
		if err != nil {
			return nil, err
		}
		p.method = def.Method
		p.url = def.URL
		p.timeout = def.Timeout
		for key, value := range def.Headers {
			p.headers[textproto.CanonicalMIMEHeaderKey(key)] = value
		}
		if expected, ok := def.Expected.(map[string]any); ok {
			p.expected = expected
		}
	}

	if tc.Has(testdata.FieldURL) {
		p.url = r.interfaces.ResolveURL(tc.String(testdata.FieldURL), r.env)
	}
	if p.url == "" {
		return nil, fmt.Errorf("case %s has no url", tc.ID())
	}

	if tc.Has(testdata.FieldMethod) {
		p.method = tc.String(testdata.FieldMethod)
	}
	if p.method == "" {
		return nil, fmt.Errorf("case %s has no method", tc.ID())
	}
	p.method = strings.ToUpper(p.method)
	if p.timeout <= 0 {
		p.timeout = r.defaultTimeout
	}

	headers, err := tc.Mapping(testdata.FieldHeaders)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		p.headers[textproto.CanonicalMIMEHeaderKey(key)] = fmt.Sprint(value)
	}

	if p.params, err = tc.JSON(testdata.FieldParams); err != nil {
		return nil, err
	}

	if tc.Has(testdata.FieldExpectedResult) {
		if p.expected, err = tc.Mapping(testdata.FieldExpectedResult); err != nil {
			return nil, err
		}
	}

	if tc.Has(testdata.FieldExpectedStatus) {
		status, err := strconv.Atoi(tc.String(testdata.FieldExpectedStatus))
		if err != nil {
			return nil, fmt.Errorf("case %s: invalid expected_status %q", tc.ID(), tc.String(testdata.FieldExpectedStatus))
		}
		p.expectedStatus = status
	}

	if p.schema, err = tc.JSON(testdata.FieldSchema); err != nil {
		return nil, err
	}

	if tc.Has(testdata.FieldToken) {
		p.token = tc.String(testdata.FieldToken)
	}

	return p, nil
}
