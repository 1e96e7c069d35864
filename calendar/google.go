package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// localCallback is the OAuth2 out-of-band callback for terminal applications.
const localCallback = "urn:ietf:wg:oauth:2.0:oob"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	// TokenFile caches the OAuth token between runs so the interactive
	// exchange happens once.
	TokenFile string
}

type GoogleSource struct {
	service *gcal.Service
}

// NewGoogleSource authenticates against the Calendar API. A cached token is
// reused when present; otherwise the user is sent through the interactive
// code exchange and the resulting token is written back to the cache file.
func NewGoogleSource(ctx context.Context, cfg GoogleConfig) (*GoogleSource, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  localCallback,
		Scopes:       []string{gcal.CalendarReadonlyScope},
	}

	token, err := loadCachedToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	if token == nil {
		token, err = exchangeInteractive(ctx, oauthConfig)
		if err != nil {
			return nil, err
		}
		if err := storeCachedToken(cfg.TokenFile, token); err != nil {
			return nil, err
		}
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleSource{service: service}, nil
}

// Events lists single events of the primary calendar between from and to.
func (s *GoogleSource) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	out := make([]Event, 0, 32)
	pageToken := ""

	for {
		call := s.service.Events.List("primary").
			SingleEvents(true).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list google calendar events: %w", err)
		}

		for _, item := range page.Items {
			out = append(out, googleEventToRaw(item))
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return out, nil
		}
	}
}

func googleEventToRaw(item *gcal.Event) Event {
	event := Event{
		Title:       item.Summary,
		Description: item.Description,
	}
	if item.Start != nil {
		event.Start = item.Start.DateTime
		if event.Start == "" {
			event.Start = item.Start.Date
		}
	}
	if item.End != nil {
		event.End = item.End.DateTime
		if event.End == "" {
			event.End = item.End.Date
		}
	}
	for _, attendee := range item.Attendees {
		event.Attendees = append(event.Attendees, Attendee{
			Self:     attendee.Self,
			Response: strings.ToLower(attendee.ResponseStatus),
		})
	}
	return event
}

func loadCachedToken(path string) (*oauth2.Token, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token cache %s: %w", path, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(content, &token); err != nil {
		return nil, fmt.Errorf("decode token cache %s: %w", path, err)
	}
	return &token, nil
}

func storeCachedToken(path string, token *oauth2.Token) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	content, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token cache directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write token cache %s: %w", path, err)
	}
	return nil
}

func exchangeInteractive(ctx context.Context, oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	authURL := oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("Please visit this auth URL: %s\n", authURL)
	fmt.Print("Enter the authorization code: ")

	var authCode string
	if _, err := fmt.Scanln(&authCode); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}
