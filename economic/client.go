package economic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"econsync/timeentry"
)

const (
	defaultBaseURL = "https://secure.e-conomic.com"

	loginPath      = "/secure/internal/login.asp"
	subnavPath     = "/Secure/subnav.asp"
	dayEntriesPath = "/Secure/generelt/dataedit.asp"
	activitiesPath = "/secure/applet/fbsearch/fbsearch.asp"
	entryFormPath  = "/secure/applet/df_doform.asp"

	// loginFailureMarker shows up in the response body when the backend
	// bounces the session back to the login screen.
	loginFailureMarker = "login.e-conomic.com"
	// entrySavedMarker is the redirect target the backend embeds after a
	// successful form post.
	entrySavedMarker = "../generelt/dataedit.asp"
)

var (
	ErrLoginFailed = errors.New("login to economic failed (check credentials)")

	// The backend addresses the current user by an internal per-agreement id
	// ("medarbid"), not the login name. It is scraped from the navigation
	// frame after login.
	employeeIDPattern = regexp.MustCompile(`medarbid=(\d+)`)
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL   string
	Agreement string
	Username  string
	Password  string
	// SessionCookies is an optional pre-authenticated Cookie header captured
	// by "econsync auth login". When set, the credential form post is skipped.
	SessionCookies string
	UserAgent      string
	HTTPClient     httpDoer
}

// Client talks to the Economic legacy web backend. The backend has no JSON
// API for time entries; everything goes through the same HTML forms the
// browser uses.
type Client struct {
	baseURL        string
	agreement      string
	username       string
	password       string
	sessionCookies string
	userAgent      string
	httpClient     httpDoer

	employeeID string
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		// The session lives in cookies handed out by the login form post.
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		doer = &http.Client{Jar: jar, Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:        baseURL,
		agreement:      strings.TrimSpace(cfg.Agreement),
		username:       strings.TrimSpace(cfg.Username),
		password:       cfg.Password,
		sessionCookies: strings.TrimSpace(cfg.SessionCookies),
		userAgent:      strings.TrimSpace(cfg.UserAgent),
		httpClient:     doer,
	}, nil
}

// Login authenticates the session and resolves the internal employee id.
// With captured session cookies the credential post is skipped and only the
// id scrape runs, which doubles as a session validity check.
func (c *Client) Login(ctx context.Context) error {
	if c.sessionCookies == "" {
		form := url.Values{}
		form.Set("aftalenr", c.agreement)
		form.Set("brugernavn", c.username)
		form.Set("password", c.password)

		body, err := c.doForm(ctx, http.MethodPost, loginPath, nil, form)
		if err != nil {
			return err
		}
		if strings.Contains(body, loginFailureMarker) {
			return ErrLoginFailed
		}
	}

	return c.resolveEmployeeID(ctx)
}

// EmployeeID returns the scraped internal user id; empty before Login.
func (c *Client) EmployeeID() string {
	return c.employeeID
}

func (c *Client) resolveEmployeeID(ctx context.Context) error {
	body, err := c.doForm(ctx, http.MethodGet, subnavPath, url.Values{"subnum": {"10"}}, nil)
	if err != nil {
		return err
	}
	if c.sessionCookies != "" && strings.Contains(body, loginFailureMarker) {
		return fmt.Errorf("%w: captured session cookies are no longer valid", ErrLoginFailed)
	}

	match := employeeIDPattern.FindStringSubmatch(body)
	if match == nil {
		return errors.New("could not determine economic internal user id")
	}
	c.employeeID = match[1]
	return nil
}

// DayEntries fetches the backend's day listing for the given date as an
// unparsed HTML blob. The blob is the duplicate-detection record: entries
// already registered for the day appear in it verbatim.
func (c *Client) DayEntries(ctx context.Context, day time.Time) (string, error) {
	if c.employeeID == "" {
		return "", errors.New("not logged in: employee id is not resolved")
	}

	query := url.Values{}
	query.Set("form", "80")
	query.Set("projektleder", "")
	query.Set("medarbid", c.employeeID)
	query.Set("mode", "dag")
	query.Set("dato", day.Format("2-1-2006"))

	return c.doForm(ctx, http.MethodGet, dayEntriesPath, query, nil)
}

// Activities fetches the id-to-name activity lookup table. The endpoint
// returns a collection of {"0": id, "1": name} pairs.
func (c *Client) Activities(ctx context.Context) (map[int]string, error) {
	query := url.Values{}
	query.Set("form", "80")
	query.Set("felt", "cs3")

	body, err := c.doForm(ctx, http.MethodGet, activitiesPath, query, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Collection []struct {
			ID   json.Number `json:"0"`
			Name string      `json:"1"`
		} `json:"collection"`
	}
	decoder := json.NewDecoder(strings.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode activity lookup: %w", err)
	}

	activities := make(map[int]string, len(payload.Collection))
	for _, item := range payload.Collection {
		id, err := item.ID.Int64()
		if err != nil {
			return nil, fmt.Errorf("activity lookup id %q is not numeric: %w", item.ID, err)
		}
		activities[int(id)] = item.Name
	}
	return activities, nil
}

// AddEntry posts one time entry through the backend's entry form.
func (c *Client) AddEntry(ctx context.Context, entry timeentry.Entry) error {
	if c.employeeID == "" {
		return errors.New("not logged in: employee id is not resolved")
	}

	query := url.Values{}
	query.Set("form", "80")
	query.Set("medarbid", c.employeeID)
	query.Set("theaction", "post")

	form := url.Values{}
	form.Set("cs1", entry.DateField())
	form.Set("cs2", fmt.Sprintf("%d", entry.ProjectID))
	form.Set("cs3", entry.ActivityID.String())
	form.Set("cs4", "")
	form.Set("cs6", entry.Description)
	form.Set("cs7", entry.HoursField())
	form.Set("cs10", "False")
	form.Set("cs11", "False")

	body, err := c.doForm(ctx, http.MethodPost, entryFormPath, query, form)
	if err != nil {
		return err
	}
	if !strings.Contains(body, entrySavedMarker) {
		return fmt.Errorf("backend did not confirm the entry: %s", excerpt(body))
	}
	return nil
}

func (c *Client) doForm(ctx context.Context, method, endpointPath string, query url.Values, form url.Values) (string, error) {
	requestURL := c.baseURL + endpointPath
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return "", fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.sessionCookies != "" {
		req.Header.Set("Cookie", c.sessionCookies)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response %s %s: %w", method, endpointPath, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf(
			"request %s %s failed with status %d: %s",
			method,
			endpointPath,
			resp.StatusCode,
			excerpt(string(content)),
		)
	}
	return string(content), nil
}

func excerpt(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}
