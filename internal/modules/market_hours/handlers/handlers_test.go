package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kanbanbar/internal/modules/market_hours"
)

type fixedProvider struct {
	status   market_hours.MarketStatus
	asked    time.Time
	holidays map[int][]string
}

func (p *fixedProvider) Holidays(year int) []string {
	if dates, ok := p.holidays[year]; ok {
		return dates
	}
	return []string{}
}

func (p *fixedProvider) MarketStatus(now time.Time) market_hours.MarketStatus {
	p.asked = now
	return p.status
}

func TestHandleGetStatus(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	provider := &fixedProvider{status: market_hours.MarketStatus{
		Open:     false,
		Reason:   market_hours.ReasonWeekend,
		Timezone: "Asia/Shanghai",
		Windows:  []string{"09:25-11:35"},
	}}
	handler := NewHandler(provider, logger)
	fixed := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return fixed }

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/market-hours/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, fixed, provider.asked)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, false, data["open"])
	assert.Equal(t, "weekend", data["reason"])
	assert.Equal(t, "Asia/Shanghai", data["timezone"])
	assert.NotNil(t, response["metadata"])
}

func TestHandleGetHolidays(t *testing.T) {
	provider := &fixedProvider{holidays: map[int][]string{
		2024: {"2024-02-12", "2024-10-01"},
	}}
	handler := NewHandler(provider, zerolog.Nop())
	handler.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	tests := []struct {
		name     string
		path     string
		code     int
		year     float64
		holidays []interface{}
	}{
		{"current year", "/market-hours/holidays", http.StatusOK, 2024, []interface{}{"2024-02-12", "2024-10-01"}},
		{"explicit year", "/market-hours/holidays/2023", http.StatusOK, 2023, []interface{}{}},
		{"bad year", "/market-hours/holidays/next", http.StatusBadRequest, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				return
			}

			var response struct {
				Data map[string]interface{} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.year, response.Data["year"])
			assert.Equal(t, tt.holidays, response.Data["holidays"])
		})
	}
}
