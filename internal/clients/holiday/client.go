// Package holiday reads public-holiday calendars from the timor.tech API.
package holiday

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/domain"
)

const (
	source = "holiday"

	// DefaultBaseURL takes the year appended
	DefaultBaseURL = "https://timor.tech/api/holiday/year/"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
)

type day struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	Date    string `json:"date"`
}

type yearResponse struct {
	Code    int            `json:"code"`
	Holiday map[string]day `json:"holiday"`
}

// Client fetches holiday lists
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a holiday client; an empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log.With().Str("client", "holiday").Logger(),
	}
}

// URL returns the request URL for year.
func (c *Client) URL(year int) string {
	if !strings.HasSuffix(c.baseURL, "/") {
		return c.baseURL + "/" + strconv.Itoa(year)
	}
	return c.baseURL + strconv.Itoa(year)
}

// Holidays returns the sorted YYYY-MM-DD dates flagged as days off in year.
// A response with a non-zero code yields an empty list without error.
// Make-up working days (holiday=false) are excluded.
func (c *Client) Holidays(ctx context.Context, year int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(year), nil)
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.StatusError(source, resp.StatusCode)
	}

	var body yearResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.ParseError(source, err)
	}
	if body.Code != 0 {
		c.log.Warn().Int("code", body.Code).Int("year", year).Msg("Holiday API returned error code")
		return []string{}, nil
	}

	dates := make([]string, 0, len(body.Holiday))
	for _, d := range body.Holiday {
		if d.Holiday && d.Date != "" {
			dates = append(dates, d.Date)
		}
	}
	sort.Strings(dates)

	c.log.Debug().Int("year", year).Int("count", len(dates)).Msg("Holidays fetched")
	return dates, nil
}
