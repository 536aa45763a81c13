// Package telemetry wires optional Sentry error reporting. Disabled by
// default; when enabled it registers itself as the errors package's
// reporter so built errors flow to Sentry with privacy scrubbing.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/bitecast/bitecast-go/internal/conf"
	"github.com/bitecast/bitecast-go/internal/errors"
	"github.com/bitecast/bitecast-go/internal/logging"
)

var serviceLogger = logging.ForService("telemetry")

// Init configures Sentry from the settings. When reporting is disabled the
// errors package reporter is cleared and Init returns nil.
func Init(settings *conf.Settings) error {
	if !settings.Sentry.Enabled {
		errors.SetTelemetryReporter(nil)
		return nil
	}
	if settings.Sentry.DSN == "" {
		return fmt.Errorf("sentry enabled but no DSN configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		Release:          settings.Version,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("initializing sentry: %w", err)
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	serviceLogger.Info("sentry error reporting enabled")
	return nil
}

// Flush drains buffered events, typically on shutdown. Safe to call when
// reporting was never initialized.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
