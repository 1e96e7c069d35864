package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	// APIURL is the REST base, e.g. https://jira.example.com/rest/api/2/.
	APIURL      string
	Username    string
	Password    string
	SearchQuery string
	UserAgent   string
	HTTPClient  httpDoer
}

// Client reads assigned issues and their worklogs over the JIRA REST API.
type Client struct {
	apiURL      string
	username    string
	password    string
	searchQuery string
	userAgent   string
	httpClient  httpDoer
}

func NewClient(cfg ClientConfig) (*Client, error) {
	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		return nil, errors.New("jira api url is required")
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		apiURL:      apiURL,
		username:    strings.TrimSpace(cfg.Username),
		password:    cfg.Password,
		searchQuery: strings.TrimSpace(cfg.SearchQuery),
		userAgent:   strings.TrimSpace(cfg.UserAgent),
		httpClient:  doer,
	}, nil
}

// Username returns the configured account, the author worklog sums are
// filtered by.
func (c *Client) Username() string {
	return c.username
}

// Issue is a raw tracker task. Fields stays a loose map because the billing
// reference lives in an instance-specific custom field configured by name.
type Issue struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// Summary returns the issue summary field, empty when absent.
func (i Issue) Summary() string {
	summary, _ := i.Fields["summary"].(string)
	return summary
}

type searchResponse struct {
	Issues []Issue `json:"issues"`
}

// Worklog is one logged-time record of an issue.
type Worklog struct {
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
	Started          string `json:"started"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

type worklogResponse struct {
	Worklogs []Worklog `json:"worklogs"`
}

// Search lists the issues matching the configured saved-search query.
func (c *Client) Search(ctx context.Context) ([]Issue, error) {
	uri := "search?jql=" + url.QueryEscape(c.searchQuery) + "&fields=" + url.QueryEscape("*all,-comment")
	var out searchResponse
	if err := c.doJSON(ctx, uri, &out); err != nil {
		return nil, err
	}
	return out.Issues, nil
}

// Worklogs lists the logged-time records of one issue.
func (c *Client) Worklogs(ctx context.Context, issueKey string) ([]Worklog, error) {
	var out worklogResponse
	if err := c.doJSON(ctx, "issue/"+url.PathEscape(issueKey)+"/worklog", &out); err != nil {
		return nil, err
	}
	return out.Worklogs, nil
}

// HoursForDay sums the issue's logged time for entries authored by the
// configured user and started on the given calendar day.
func (c *Client) HoursForDay(ctx context.Context, issueKey string, day time.Time) (float64, error) {
	worklogs, err := c.Worklogs(ctx, issueKey)
	if err != nil {
		return 0, err
	}

	dayPrefix := day.Format("2006-01-02")
	seconds := 0
	for _, worklog := range worklogs {
		if worklog.Author.Name != c.username {
			continue
		}
		if !strings.HasPrefix(worklog.Started, dayPrefix) {
			continue
		}
		seconds += worklog.TimeSpentSeconds
	}
	return float64(seconds) / 3600, nil
}

func (c *Client) doJSON(ctx context.Context, uri string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+uri, nil)
	if err != nil {
		return fmt.Errorf("create jira request %s: %w", uri, err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jira request %s failed: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errors.New("jira rejected the credentials")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"jira request %s failed with status %d: %s",
			uri,
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode jira response %s: %w", uri, err)
	}
	return nil
}
