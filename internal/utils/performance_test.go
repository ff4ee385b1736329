package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTimeOperation(t *testing.T) {
	tests := []struct {
		name      string
		slowAfter time.Duration
		level     string
	}{
		{"fast", time.Hour, `"level":"debug"`},
		{"slow", time.Nanosecond, `"level":"warn"`},
		{"no threshold", 0, `"level":"debug"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := zerolog.New(&buf).Level(zerolog.DebugLevel)

			done := TimeOperation(log, "quotes_cycle", tt.slowAfter)
			time.Sleep(time.Millisecond)
			done()

			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), `"operation":"quotes_cycle"`)
		})
	}
}
