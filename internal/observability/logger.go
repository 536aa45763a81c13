// Package observability provides Prometheus metrics functionality for monitoring BiteCast.
package observability

import "github.com/bitecast/bitecast-go/internal/logging"

// Package-level cached logger instance for efficiency.
// All logging in this package should use this variable.
var serviceLogger = logging.ForService("telemetry")
