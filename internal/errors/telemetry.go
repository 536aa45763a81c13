// Package errors - telemetry reporter integration (optional)
package errors

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter is an interface for reporting errors to telemetry systems
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

var (
	telemetryReporter   TelemetryReporter
	telemetryMutex      sync.RWMutex
	hasActiveReporting  atomic.Bool
	urlPattern          = regexp.MustCompile(`https?://[^\s"']+`)
	absolutePathPattern = regexp.MustCompile(`(/[\w.\-]+){2,}`)
)

// SetTelemetryReporter registers the active telemetry reporter.
// Passing nil disables reporting.
func SetTelemetryReporter(reporter TelemetryReporter) {
	telemetryMutex.Lock()
	defer telemetryMutex.Unlock()
	telemetryReporter = reporter
	hasActiveReporting.Store(reporter != nil && reporter.IsEnabled())
}

// reportToTelemetry forwards a built error to the registered reporter, if any.
func reportToTelemetry(ee *EnhancedError) {
	telemetryMutex.RLock()
	reporter := telemetryReporter
	telemetryMutex.RUnlock()

	if reporter == nil || !reporter.IsEnabled() {
		return
	}

	reporter.ReportError(ee)
}

// SentryReporter implements TelemetryReporter for Sentry
type SentryReporter struct {
	enabled bool
}

// NewSentryReporter creates a new Sentry telemetry reporter
func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{enabled: enabled}
}

// IsEnabled returns whether Sentry telemetry is enabled
func (sr *SentryReporter) IsEnabled() bool {
	return sr.enabled
}

// ReportError reports an enhanced error to Sentry with basic privacy scrubbing
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() {
		return
	}

	message := scrubMessage(fmt.Sprintf("[%s] %s", ee.Category, ee.Err.Error()))

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.GetComponent())
		scope.SetTag("category", string(ee.Category))
		if ee.Priority != "" {
			scope.SetTag("priority", ee.Priority)
		}

		for key, value := range ee.GetContext() {
			if s, ok := value.(string); ok {
				scope.SetExtra(key, scrubMessage(s))
				continue
			}
			scope.SetExtra(key, value)
		}

		sentry.CaptureMessage(message)
	})

	ee.MarkReported()
}

// scrubMessage removes URLs and filesystem paths before a message leaves the host.
func scrubMessage(msg string) string {
	msg = urlPattern.ReplaceAllString(msg, "[url]")
	msg = absolutePathPattern.ReplaceAllString(msg, "[path]")
	return msg
}
