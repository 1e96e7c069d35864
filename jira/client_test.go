package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeDoer struct {
	fn func(req *http.Request) (*http.Response, error)
}

func (d fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return d.fn(req)
}

func jsonResponse(payload any) *http.Response {
	content, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(string(content))),
	}
}

func testClient(t *testing.T, fn func(req *http.Request) (*http.Response, error)) *Client {
	t.Helper()

	client, err := NewClient(ClientConfig{
		APIURL:      "https://jira.example.com/rest/api/2",
		Username:    "usr",
		Password:    "secret",
		SearchQuery: "assignee=currentUser() AND sprint in openSprints()",
		HTTPClient:  fakeDoer{fn: fn},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClient_Search(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		if user, pass, ok := req.BasicAuth(); !ok || user != "usr" || pass != "secret" {
			t.Fatalf("missing basic auth")
		}
		if !strings.HasPrefix(req.URL.Path, "/rest/api/2/search") {
			return nil, fmt.Errorf("unexpected path %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("fields"); got != "*all,-comment" {
			t.Fatalf("unexpected fields parameter: %q", got)
		}
		if got := req.URL.Query().Get("jql"); !strings.Contains(got, "assignee=currentUser()") {
			t.Fatalf("unexpected jql: %q", got)
		}
		return jsonResponse(map[string]any{
			"issues": []map[string]any{
				{
					"key": "PROJ-1",
					"fields": map[string]any{
						"summary":           "Fix the build",
						"customfield_10100": "123 Project Phoenix",
					},
				},
			},
		}), nil
	})

	issues, err := client.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Key != "PROJ-1" || issues[0].Summary() != "Fix the build" {
		t.Fatalf("unexpected issue: %+v", issues[0])
	}
	if issues[0].Fields["customfield_10100"] != "123 Project Phoenix" {
		t.Fatalf("custom fields must be preserved: %+v", issues[0].Fields)
	}
}

func TestClient_HoursForDay(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/rest/api/2/issue/PROJ-1/worklog" {
			return nil, fmt.Errorf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(map[string]any{
			"worklogs": []map[string]any{
				{
					"author":           map[string]any{"name": "usr"},
					"started":          "2024-03-01T09:00:00.000+0100",
					"timeSpentSeconds": 3600,
				},
				{
					"author":           map[string]any{"name": "usr"},
					"started":          "2024-03-01T13:00:00.000+0100",
					"timeSpentSeconds": 1800,
				},
				{
					// Different author, same day.
					"author":           map[string]any{"name": "someone-else"},
					"started":          "2024-03-01T10:00:00.000+0100",
					"timeSpentSeconds": 7200,
				},
				{
					// Right author, previous day.
					"author":           map[string]any{"name": "usr"},
					"started":          "2024-02-29T09:00:00.000+0100",
					"timeSpentSeconds": 7200,
				},
			},
		}), nil
	})

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	hours, err := client.HoursForDay(context.Background(), "PROJ-1", day)
	if err != nil {
		t.Fatalf("hours for day: %v", err)
	}
	if hours != 1.5 {
		t.Fatalf("expected 1.5 hours, got %v", hours)
	}
}

func TestClient_RejectedCredentials(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	})

	if _, err := client.Search(context.Background()); err == nil {
		t.Fatalf("expected authentication error")
	}
}

func TestNewClient_RequiresAPIURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatalf("expected error for missing api url")
	}
}
