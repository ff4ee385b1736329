// Package gitlab lists open merge requests through the GitLab v4 REST API.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/kanbanbar/internal/domain"
)

const source = "gitlab"

// Project identifies one watched project on a GitLab instance.
type Project struct {
	BaseURL     string
	ProjectID   string // numeric id or "group/name" path
	AccessToken string
}

// Client for the GitLab merge request API
type Client struct {
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new GitLab client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log.With().Str("client", "gitlab").Logger(),
	}
}

type author struct {
	Name string `json:"name"`
}

type mergeRequest struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       author    `json:"author"`
	SourceBranch string    `json:"source_branch"`
	TargetBranch string    `json:"target_branch"`
	CreatedAt    time.Time `json:"created_at"`
	WebURL       string    `json:"web_url"`
	MergeStatus  string    `json:"merge_status"`
}

var numericID = regexp.MustCompile(`^\d+$`)

// ProjectURL builds the open merge requests endpoint. Path ids are escaped.
func ProjectURL(p Project) string {
	id := p.ProjectID
	if !numericID.MatchString(id) {
		id = url.PathEscape(id)
	}
	return fmt.Sprintf("%s/api/v4/projects/%s/merge_requests?state=opened", strings.TrimRight(p.BaseURL, "/"), id)
}

// ProjectName derives "group/name" from a merge request web URL.
func ProjectName(webURL string) string {
	parts := strings.Split(webURL, "/")
	if len(parts) < 5 {
		return webURL
	}
	return strings.Join(parts[3:5], "/")
}

// FetchMergeRequests returns the open merge requests of one project.
func (c *Client) FetchMergeRequests(ctx context.Context, p Project) ([]domain.MergeRequestRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ProjectURL(p), nil)
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}
	req.Header.Set("Private-Token", p.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NetworkError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.StatusError(source, resp.StatusCode)
	}

	var payload []mergeRequest
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.ParseError(source, err)
	}

	records := make([]domain.MergeRequestRecord, 0, len(payload))
	for _, mr := range payload {
		records = append(records, domain.MergeRequestRecord{
			ID:           mr.ID,
			Project:      ProjectName(mr.WebURL),
			Title:        mr.Title,
			Author:       mr.Author.Name,
			SourceBranch: mr.SourceBranch,
			TargetBranch: mr.TargetBranch,
			CreatedAt:    mr.CreatedAt,
			WebURL:       mr.WebURL,
			Mergeable:    mr.MergeStatus != "cannot_be_merged",
		})
	}
	return records, nil
}

// FetchAll queries every project concurrently. Results keep project order;
// any failure fails the whole fetch.
func (c *Client) FetchAll(ctx context.Context, projects []Project) ([][]domain.MergeRequestRecord, error) {
	results := make([][]domain.MergeRequestRecord, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			records, err := c.FetchMergeRequests(ctx, p)
			if err != nil {
				return fmt.Errorf("project %s: %w", p.ProjectID, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	c.log.Info().Int("projects", len(projects)).Int("count", total).Msg("Merge requests fetched")
	return results, nil
}
