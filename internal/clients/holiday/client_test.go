package holiday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/kanbanbar/internal/domain"
)

const yearPayload = `{
  "code": 0,
  "holiday": {
    "10-01": {"holiday": true, "name": "国庆节", "wage": 3, "date": "2024-10-01"},
    "01-01": {"holiday": true, "name": "元旦", "wage": 3, "date": "2024-01-01"},
    "10-12": {"holiday": false, "name": "国庆节后补班", "wage": 1, "date": "2024-10-12"}
  }
}`

func TestHolidays(t *testing.T) {
	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(yearPayload))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api/holiday/year/", zerolog.Nop())
	dates, err := client.Holidays(context.Background(), 2024)

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-10-01"}, dates)
	assert.Equal(t, "/api/holiday/year/2024", gotPath)
	assert.Contains(t, gotUA, "Mozilla")
}

func TestHolidays_NonZeroCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 1, "holiday": null}`))
	}))
	defer server.Close()

	dates, err := NewClient(server.URL, zerolog.Nop()).Holidays(context.Background(), 2024)

	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestHolidays_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, zerolog.Nop()).Holidays(context.Background(), 2024)
	assert.True(t, domain.IsFetchKind(err, domain.KindStatus))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer bad.Close()

	_, err = NewClient(bad.URL, zerolog.Nop()).Holidays(context.Background(), 2024)
	assert.True(t, domain.IsFetchKind(err, domain.KindParse))
}

func TestURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL+"2025", NewClient("", zerolog.Nop()).URL(2025))
	assert.Equal(t, "http://h/y/2025", NewClient("http://h/y", zerolog.Nop()).URL(2025))
}
