package calendar

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

const defaultOffice365BaseURL = "https://outlook.office365.com/api/v1.0"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Office365Config struct {
	BaseURL    string
	Email      string
	Password   string
	UserAgent  string
	HTTPClient httpDoer
}

// Office365Source reads the calendar view of the Office 365 REST API with
// basic auth.
type Office365Source struct {
	baseURL    string
	email      string
	password   string
	userAgent  string
	httpClient httpDoer
}

func NewOffice365Source(cfg Office365Config) (*Office365Source, error) {
	if strings.TrimSpace(cfg.Email) == "" {
		return nil, errors.New("office365 email is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOffice365BaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &Office365Source{
		baseURL:    baseURL,
		email:      cfg.Email,
		password:   cfg.Password,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: doer,
	}, nil
}

type office365Response struct {
	Value    []office365Event `json:"value"`
	NextLink string           `json:"@odata.nextLink"`
}

type office365Event struct {
	Subject string `json:"Subject"`
	Start   string `json:"Start"`
	End     string `json:"End"`
	Body    struct {
		Content string `json:"Content"`
	} `json:"Body"`
	ResponseStatus struct {
		Response string `json:"Response"`
	} `json:"ResponseStatus"`
	Attendees []office365Attendee `json:"Attendees"`
}

type office365Attendee struct {
	EmailAddress struct {
		Address string `json:"Address"`
		Name    string `json:"Name"`
	} `json:"EmailAddress"`
	Status struct {
		Response string `json:"Response"`
	} `json:"Status"`
}

// Events pages through the calendar view between from and to following
// @odata.nextLink until exhausted.
func (s *Office365Source) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	requestURL := fmt.Sprintf(
		"%s/me/calendarview?startDateTime=%s&endDateTime=%s",
		s.baseURL,
		url.QueryEscape(from.Format(time.RFC3339)),
		url.QueryEscape(to.Format(time.RFC3339)),
	)

	out := make([]Event, 0, 32)
	for requestURL != "" {
		page, err := s.getPage(ctx, requestURL)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Value {
			out = append(out, office365EventToRaw(item))
		}
		requestURL = page.NextLink
	}
	return out, nil
}

func (s *Office365Source) getPage(ctx context.Context, requestURL string) (office365Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return office365Response{}, fmt.Errorf("create calendarview request: %w", err)
	}
	req.SetBasicAuth(s.email, s.password)
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return office365Response{}, fmt.Errorf("calendarview request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return office365Response{}, errors.New("office365 rejected the credentials")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return office365Response{}, fmt.Errorf(
			"calendarview request failed with status %d: %s",
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	var page office365Response
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return office365Response{}, fmt.Errorf("decode calendarview response: %w", err)
	}
	return page, nil
}

// office365EventToRaw maps the provider shape onto the internal raw event.
// Office 365 reports the current user's acceptance at event level, not per
// attendee, so a synthetic self attendee carries it; events without any
// attendees stay attendee-less for the filter chain to drop.
func office365EventToRaw(item office365Event) Event {
	event := Event{
		Title:       item.Subject,
		Start:       item.Start,
		End:         item.End,
		Description: item.Body.Content,
	}
	if len(item.Attendees) == 0 {
		return event
	}

	for _, attendee := range item.Attendees {
		event.Attendees = append(event.Attendees, Attendee{
			Response: strings.ToLower(attendee.Status.Response),
		})
	}
	event.Attendees = append(event.Attendees, Attendee{
		Self:     true,
		Response: strings.ToLower(item.ResponseStatus.Response),
	})
	return event
}
