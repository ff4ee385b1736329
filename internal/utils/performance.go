package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// TimeOperation returns a func that logs the elapsed time since the call.
// Operations running longer than slowAfter are logged at warn level; zero disables the warning.
//
// Usage:
//
//	defer utils.TimeOperation(s.log, "quotes_cycle", interval)()
func TimeOperation(log zerolog.Logger, operation string, slowAfter time.Duration) func() {
	start := time.Now()

	return func() {
		elapsed := time.Since(start)

		event := log.Debug()
		if slowAfter > 0 && elapsed > slowAfter {
			event = log.Warn().Dur("slow_after", slowAfter)
		}
		event.
			Str("operation", operation).
			Dur("duration_ms", elapsed).
			Msg("Operation completed")
	}
}
