package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kanbanbar/internal/config"
	"github.com/aristath/kanbanbar/internal/domain"
	"github.com/aristath/kanbanbar/internal/modules/display"
	kbtesting "github.com/aristath/kanbanbar/internal/testing"
	"github.com/aristath/kanbanbar/internal/work"
)

type testServer struct {
	server   *Server
	clock    *kbtesting.FakeClock
	settings *config.Store
	path     string
	cycles   int
	ready    error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		clock: kbtesting.NewFakeClock(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)),
		path:  filepath.Join(t.TempDir(), "settings.yaml"),
	}
	require.NoError(t, os.WriteFile(ts.path, []byte("polling:\n  interval: 5\n"), 0o644))

	settings, err := config.NewStore(ts.path, zerolog.Nop())
	require.NoError(t, err)
	ts.settings = settings

	reg := work.NewRegistry()
	reg.Register(work.PollJob{
		Name:     "quotes",
		Sections: []string{config.SectionStock},
		Cycle: func(ctx context.Context, run work.Run) (work.Outcome, error) {
			ts.cycles++
			return work.OutcomeDone, nil
		},
		Ready: func() error { return ts.ready },
	})

	ts.server = New(Config{
		Log:       zerolog.Nop(),
		Port:      0,
		DevMode:   true,
		DB:        kbtesting.NewTestDB(t),
		Settings:  settings,
		Scheduler: work.NewScheduler(reg, ts.clock, zerolog.Nop()),
		Display:   display.NewStateManager([]string{"quotes"}, zerolog.Nop()),
	})
	return ts
}

func (ts *testServer) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestRestartJob(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/jobs/quotes/restart")
	require.Equal(t, http.StatusAccepted, w.Code)

	ts.clock.Advance(0)
	assert.Equal(t, 1, ts.cycles)

	w = ts.do(http.MethodGet, "/api/jobs")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []work.Status `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "quotes", body.Data[0].Name)
	assert.Equal(t, int64(1), body.Data[0].Runs)
	assert.True(t, body.Data[0].Scheduled)
}

func TestRestartJob_Errors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/jobs/nope/restart")
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.ready = &domain.ConfigError{Section: config.SectionStock, Field: "symbols"}
	w = ts.do(http.MethodPost, "/api/jobs/quotes/restart")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "stock.symbols")
}

func TestReloadConfig(t *testing.T) {
	ts := newTestServer(t)

	require.NoError(t, os.WriteFile(ts.path, []byte("polling:\n  interval: 9\n"), 0o644))
	w := ts.do(http.MethodPost, "/api/config/reload")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changed_sections":["polling"]`)
	assert.Equal(t, 9, ts.settings.Current().Polling.Interval)

	require.NoError(t, os.WriteFile(ts.path, []byte("polling: [broken"), 0o644))
	w = ts.do(http.MethodPost, "/api/config/reload")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 9, ts.settings.Current().Polling.Interval)
}

func TestSystemStatus(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/system")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data SystemStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Positive(t, body.Data.Goroutines)
	assert.NotEmpty(t, body.Data.GoVersion)
	assert.NotEmpty(t, body.Data.DatabasePath)
}

func TestDisplayRoutesMounted(t *testing.T) {
	ts := newTestServer(t)
	ts.server.displayManager.Render("quotes", domain.View{Text: "MT 1.00"})

	w := ts.do(http.MethodGet, "/api/bar")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MT 1.00")
}
