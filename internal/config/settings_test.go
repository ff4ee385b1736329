package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 5, s.Polling.Interval)
	assert.Equal(t, 30, s.Polling.IdleInterval)
	assert.Equal(t, 500*time.Millisecond, s.Polling.Debounce())
	assert.Equal(t, "Asia/Shanghai", s.Market.Timezone)
	assert.Equal(t, []Window{{"09:25", "11:35"}, {"13:00", "15:05"}}, s.Market.Windows)
	assert.Equal(t, "MR {count}", s.GitLab.Template)
	require.NoError(t, s.Validate())
}

func TestPollingSettings_Intervals(t *testing.T) {
	interval, idle, retry := PollingSettings{Interval: 5, IdleInterval: 60}.Intervals()
	assert.Equal(t, 5*time.Second, interval)
	assert.Equal(t, time.Minute, idle)
	assert.Equal(t, 5*time.Second, retry, "zero retry interval uses the normal one")

	_, _, retry = PollingSettings{Interval: 5, IdleInterval: 60, RetryInterval: 2}.Intervals()
	assert.Equal(t, 2*time.Second, retry)
}

func TestParseSettings(t *testing.T) {
	data := []byte(`
polling:
  interval: 10
stock:
  symbols: [sh600000, sz000001]
  aliases:
    sh600000: PF
gitlab:
  projects:
    - base_url: https://gitlab.example.com
      project_id: group/app
      access_token: secret
zentao:
  base_url: https://zentao.example.com
  account: bob
  password: pw
`)

	s, err := ParseSettings(data)
	require.NoError(t, err)

	assert.Equal(t, 10, s.Polling.Interval)
	assert.Equal(t, 30, s.Polling.IdleInterval)
	assert.Equal(t, []string{"sh600000", "sz000001"}, s.Stock.Symbols)
	assert.Equal(t, "PF", s.Stock.Aliases["sh600000"])
	require.Len(t, s.GitLab.Projects, 1)
	assert.Equal(t, "group/app", s.GitLab.Projects[0].ProjectID)
	assert.Equal(t, "bob", s.Zentao.Account)
}

func TestParseSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative interval", "polling:\n  interval: -1\n"},
		{"bad window", "market:\n  windows:\n    - start: '9am'\n      end: '11:00'\n"},
		{"inverted window", "market:\n  windows:\n    - start: '15:00'\n      end: '09:00'\n"},
		{"bad url", "zentao:\n  base_url: not a url\n"},
		{"unknown timezone", "market:\n  timezone: Mars/Olympus\n"},
		{"malformed yaml", "polling: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseSettings_InvertedWindowMessage(t *testing.T) {
	_, err := ParseSettings([]byte("market:\n  windows:\n    - start: '09:30'\n      end: '11:30'\n    - start: '15:00'\n      end: '13:00'\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "15:00-13:00 ends before it starts")
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stock:\n  separator: ' | '\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, " | ", s.Stock.Separator)
}
