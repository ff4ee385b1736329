// Package zentao logs in to a Zentao project-management server and scrapes
// the tasks assigned to the account.
package zentao

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/kanbanbar/internal/domain"
)

const (
	source = "zentao"

	randomPath = "/user-refreshRandom.html"
	loginPath  = "/user-login.html"

	// TasksPath lists tasks assigned to the current account, sorted by status.
	TasksPath = "/my-work-task-assignedTo-status_asc-0-50-1.html"

	loginSuccessMarker  = "<script>self.location='/';"
	loginRedirectMarker = "<script>self.location='/user-login"
)

// Client for the Zentao web UI
type Client struct {
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Zentao client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log.With().Str("client", "zentao").Logger(),
	}
}

// HashPassword mixes the per-session random token into the password digest:
// md5(md5(password) + random), hex encoded.
func HashPassword(password, random string) string {
	return md5Hex(md5Hex(password) + random)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// MergeCookies joins the name=value pairs of every Set-Cookie header, first occurrence wins.
func MergeCookies(headers ...http.Header) string {
	seen := make(map[string]bool)
	var pairs []string
	for _, h := range headers {
		for _, raw := range h.Values("Set-Cookie") {
			pair := strings.TrimSpace(strings.SplitN(raw, ";", 2)[0])
			if pair == "" || seen[pair] {
				continue
			}
			seen[pair] = true
			pairs = append(pairs, pair)
		}
	}
	return strings.Join(pairs, "; ")
}

// Login performs the two-step handshake and returns the session cookie.
// A response without the success redirect means the credentials were rejected.
func (c *Client) Login(ctx context.Context, baseURL string, creds domain.Credentials) (string, error) {
	base := strings.TrimRight(baseURL, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+randomPath, nil)
	if err != nil {
		return "", domain.NetworkError(source, err)
	}
	// Without this header the server does not return the random token
	req.Header.Set("Content-Type", "text/html; charset=utf-8")

	randResp, randBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	random := strings.TrimSpace(randBody)
	if random == "" {
		return "", domain.ParseError(source, fmt.Errorf("empty login token"))
	}

	form := url.Values{
		"account":          {creds.Account},
		"password":         {HashPassword(creds.Password, random)},
		"passwordStrength": {"1"},
		"referer":          {"/"},
		"verifyRand":       {random},
		"keepLogin":        {"1"},
		"captcha":          {""},
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, base+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", domain.NetworkError(source, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie := MergeCookies(randResp.Header); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	loginResp, loginBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	if !strings.Contains(loginBody, loginSuccessMarker) {
		c.log.Warn().Str("account", creds.Account).Msg("Login rejected")
		return "", domain.ErrBadCredentials
	}

	return MergeCookies(randResp.Header, loginResp.Header), nil
}

// FetchTasks returns the task tree assigned to the logged-in account.
// It returns domain.ErrSessionExpired when the server redirects to its login page.
func (c *Client) FetchTasks(ctx context.Context, baseURL, cookie string) ([]domain.TaskRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+TasksPath, nil)
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", cookie)

	_, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if strings.Contains(body, loginRedirectMarker) {
		return nil, domain.ErrSessionExpired
	}

	tasks, err := ParseTaskPage(body)
	if err != nil {
		return nil, domain.ParseError(source, err)
	}
	c.log.Info().Int("count", len(tasks)).Msg("Tasks fetched")
	return tasks, nil
}

func (c *Client) do(req *http.Request) (*http.Response, string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", domain.NetworkError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", domain.StatusError(source, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", domain.NetworkError(source, err)
	}
	return resp, string(body), nil
}
