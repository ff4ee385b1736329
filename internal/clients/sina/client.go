// Package sina fetches real-time quotes from the Sina finance feed.
package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/aristath/kanbanbar/internal/domain"
	"github.com/aristath/kanbanbar/internal/utils"
)

const (
	defaultBaseURL = "https://hq.sinajs.cn"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
	referer        = "https://finance.sina.com.cn"
	source         = "sina"
)

// Client for the hq.sinajs.cn quote feed
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new quote feed client. An empty baseURL uses the public feed.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log.With().Str("client", "sina").Logger(),
	}
}

// FetchQuotes returns one record per code the feed knows, in feed order.
func (c *Client) FetchQuotes(ctx context.Context, codes []string) ([]domain.QuoteRecord, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/list=%s", c.baseURL, strings.Join(codes, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	c.log.Debug().Str("url", url).Msg("Fetching quotes")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.StatusError(source, resp.StatusCode)
	}

	// The feed is GBK encoded
	body, err := io.ReadAll(transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}

	quotes := ParseQuotes(string(body))
	for _, q := range quotes {
		c.log.Info().
			Str("name", q.Name).
			Str("latest", utils.FormatFixed(q.Price, 2)).
			Str("prev_close", utils.FormatFixed(q.YesterdayPrice, 2)).
			Msg("Quote fetched")
	}
	return quotes, nil
}

var assignment = regexp.MustCompile(`var hq_str_(\w+)="([^"]+)`)

// Field positions inside the quoted CSV.
const (
	fieldName      = 0
	fieldOpen      = 1
	fieldPrevClose = 2
	fieldPrice     = 3
	fieldHigh      = 4
	fieldLow       = 5
	fieldTurnover  = 9
)

// ParseQuotes extracts records from the decoded feed body.
// Lines that are not assignments, or carry too few fields, are skipped.
func ParseQuotes(body string) []domain.QuoteRecord {
	var quotes []domain.QuoteRecord
	for _, line := range strings.Split(body, "\n") {
		m := assignment.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		values := strings.Split(m[2], ",")
		if len(values) <= fieldTurnover {
			continue
		}
		quotes = append(quotes, domain.QuoteRecord{
			Code:           m[1],
			Name:           values[fieldName],
			Price:          utils.TruncateDecimals(values[fieldPrice], 2),
			YesterdayPrice: utils.TruncateDecimals(values[fieldPrevClose], 2),
			OpenPrice:      utils.TruncateDecimals(values[fieldOpen], 2),
			MaxPrice:       utils.TruncateDecimals(values[fieldHigh], 2),
			MinPrice:       utils.TruncateDecimals(values[fieldLow], 2),
			Turnover:       utils.TruncateDecimals(values[fieldTurnover], 2),
			AsOfDate:       values[len(values)-3],
			AsOfTime:       values[len(values)-2],
		})
	}
	return quotes
}
