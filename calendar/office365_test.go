package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
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
		Body:       io.NopCloser(bytes.NewReader(content)),
	}
}

func TestOffice365Source_EventsFollowsPagination(t *testing.T) {
	t.Parallel()

	requests := 0
	doer := fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		requests++
		if user, pass, ok := req.BasicAuth(); !ok || user != "user@example.com" || pass != "secret" {
			t.Fatalf("missing or wrong basic auth")
		}

		switch requests {
		case 1:
			if req.URL.Query().Get("startDateTime") == "" {
				t.Fatalf("missing startDateTime query parameter")
			}
			return jsonResponse(map[string]any{
				"value": []map[string]any{
					{
						"Subject": "Client Call",
						"Start":   "2024-03-01T09:00:00Z",
						"End":     "2024-03-01T09:30:00Z",
						"Body":    map[string]any{"Content": "#economic: 123"},
						"ResponseStatus": map[string]any{
							"Response": "Accepted",
						},
						"Attendees": []map[string]any{
							{
								"EmailAddress": map[string]any{"Address": "peer@example.com"},
								"Status":       map[string]any{"Response": "Declined"},
							},
						},
					},
				},
				"@odata.nextLink": "https://outlook.office365.com/api/v1.0/me/calendarview?page=2",
			}), nil
		case 2:
			if req.URL.Query().Get("page") != "2" {
				t.Fatalf("expected next link to be followed, got %s", req.URL.String())
			}
			return jsonResponse(map[string]any{
				"value": []map[string]any{
					{
						"Subject": "All Hands",
						"Start":   "2024-03-01T15:00:00Z",
						"End":     "2024-03-01T16:00:00Z",
					},
				},
			}), nil
		default:
			return nil, fmt.Errorf("unexpected request %d", requests)
		}
	}}

	source, err := NewOffice365Source(Office365Config{
		Email:      "user@example.com",
		Password:   "secret",
		HTTPClient: doer,
	})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	events, err := source.Events(context.Background(), day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events across pages, got %d", len(events))
	}

	first := events[0]
	if first.Title != "Client Call" || first.Description != "#economic: 123" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if len(first.Attendees) != 2 {
		t.Fatalf("expected declined peer plus synthetic self, got %+v", first.Attendees)
	}
	if !selfAccepted(first) {
		t.Fatalf("event-level Accepted must map to an accepted self attendee")
	}

	if len(events[1].Attendees) != 0 {
		t.Fatalf("attendee-less event must stay attendee-less, got %+v", events[1].Attendees)
	}
}

func TestOffice365Source_RejectedCredentials(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	}}

	source, err := NewOffice365Source(Office365Config{Email: "user@example.com", HTTPClient: doer})
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := source.Events(context.Background(), day, day.AddDate(0, 0, 1)); err == nil {
		t.Fatalf("expected authentication error")
	}
}

func TestNewOffice365Source_RequiresEmail(t *testing.T) {
	t.Parallel()

	if _, err := NewOffice365Source(Office365Config{}); err == nil {
		t.Fatalf("expected error for missing email")
	}
}
