package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/caserun/internal/http"
	"github.com/wesleyorama2/caserun/internal/runner"
)

// Formatter renders case results and run summaries for the terminal
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatResult formats the outcome of one case. Failed assertions and
// errors are always shown; request and response details only when verbose.
func (f *Formatter) FormatResult(res runner.Result) string {
	var buf strings.Builder

	title := res.CaseID
	if res.Description != "" {
		title += " - " + res.Description
	}

	switch res.Status {
	case runner.StatusPassed:
		buf.WriteString(fmt.Sprintf("%s %s %s (%dms)\n", SuccessIcon(f.NoColor), f.scheme.Pass.Sprint("PASS"), title, res.Duration.Milliseconds()))
	case runner.StatusFailed:
		buf.WriteString(fmt.Sprintf("%s %s %s (%dms)\n", ErrorIcon(f.NoColor), f.scheme.Fail.Sprint("FAIL"), title, res.Duration.Milliseconds()))
	case runner.StatusSkipped:
		buf.WriteString(fmt.Sprintf("%s %s %s: %s\n", WarningIcon(f.NoColor), f.scheme.Skip.Sprint("SKIP"), title, res.Reason))
		return buf.String()
	case runner.StatusErrored:
		buf.WriteString(fmt.Sprintf("%s %s %s: %v\n", ErrorIcon(f.NoColor), f.scheme.Fail.Sprint("ERROR"), title, res.Err))
	}

	if f.Verbose || res.Status != runner.StatusPassed {
		if res.Method != "" {
			buf.WriteString(fmt.Sprintf("  ▶ REQUEST: %s %s\n", f.scheme.Method.Sprint(res.Method), f.scheme.URL.Sprint(res.URL)))
		}
		if f.Verbose && res.Params != nil {
			buf.WriteString("    Params: ")
			buf.WriteString(formatJSONValue(res.Params))
			buf.WriteString("\n")
		}
	}

	if f.Verbose && res.Response != nil {
		buf.WriteString(f.FormatResponse(res.Response))
	}

	for _, a := range res.Assertions {
		if a.Passed {
			if f.Verbose {
				buf.WriteString(fmt.Sprintf("    %s %s\n", SuccessIcon(f.NoColor), a.Name))
			}
			continue
		}
		buf.WriteString(fmt.Sprintf("    %s %s\n", ErrorIcon(f.NoColor), a.Message))
	}

	return buf.String()
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	statusColor := f.scheme.Fail
	if resp.IsSuccess() {
		statusColor = f.scheme.Pass
	} else if resp.IsRedirect() {
		statusColor = f.scheme.Skip
	}

	buf.WriteString(fmt.Sprintf("  ◀ RESPONSE: %s (%dms)\n",
		statusColor.Sprint(resp.Status),
		resp.GetResponseTimeMillis()))

	if f.Verbose {
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", resp.GetTimeToFirstByteMillis()))

		keys := make([]string, 0, len(resp.Headers))
		for key := range resp.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		buf.WriteString("    Headers:\n")
		for _, key := range keys {
			for _, value := range resp.Headers[key] {
				buf.WriteString(fmt.Sprintf("      %s: %s\n", f.scheme.HeaderKey.Sprint(key), value))
			}
		}
	}

	body, err := resp.GetBodyAsString()
	if err == nil && body != "" {
		buf.WriteString("    Body:\n")
		buf.WriteString("    " + formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatSummary formats the totals of a run
func (f *Formatter) FormatSummary(s runner.Summary) string {
	var buf strings.Builder

	totals := f.scheme.Pass
	status := SuccessIcon(f.NoColor)
	if !s.OK() {
		totals = f.scheme.Fail
		status = ErrorIcon(f.NoColor)
	}

	buf.WriteString(fmt.Sprintf("\n▶ SUMMARY: %d cases\n", s.Total))
	buf.WriteString(fmt.Sprintf("  %s Cases: %s passed, %s failed, %s skipped, %s errored\n",
		status,
		totals.Sprint(s.Passed),
		totals.Sprint(s.Failed),
		totals.Sprint(s.Skipped),
		totals.Sprint(s.Errored)))

	assertionStatus := SuccessIcon(f.NoColor)
	if s.FailedAssertions > 0 {
		assertionStatus = ErrorIcon(f.NoColor)
	}
	buf.WriteString(fmt.Sprintf("  %s Assertions: %d passed, %d failed\n",
		assertionStatus, s.Assertions-s.FailedAssertions, s.FailedAssertions))

	if s.Latency.Count > 0 {
		buf.WriteString(fmt.Sprintf("  Latency: min %s, p50 %s, p90 %s, p95 %s, p99 %s, max %s\n",
			formatDuration(s.Latency.Min),
			formatDuration(s.Latency.P50),
			formatDuration(s.Latency.P90),
			formatDuration(s.Latency.P95),
			formatDuration(s.Latency.P99),
			formatDuration(s.Latency.Max)))
	}

	buf.WriteString(fmt.Sprintf("  Total time: %dms\n", s.Duration.Milliseconds()))
	return buf.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}

func formatJSONValue(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return formatJSONString(string(encoded))
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "    ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
