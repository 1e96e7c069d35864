package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyCalendarProvider  = "calendar.provider"
	KeyEconomicBaseURL   = "economic.base_url"
	KeyJiraUseWorklog    = "jira.use_worklog"
	KeyGoogleTokenFile   = "calendar.google.token_file"
	KeyOffice365BaseURL  = "calendar.office365.base_url"
	KeyJiraEconomicField = "jira.economic_fields"
)

const (
	ProviderGoogle    = "google"
	ProviderOffice365 = "office365"
)

// Config is the immutable configuration value object. It is loaded and
// validated once at startup and handed to each component constructor.
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar" validate:"required"`
	Jira     JiraConfig     `mapstructure:"jira"`
	Economic EconomicConfig `mapstructure:"economic" validate:"required"`
}

type CalendarConfig struct {
	Provider  string          `mapstructure:"provider" validate:"required,oneof=google office365"`
	Google    GoogleConfig    `mapstructure:"google"`
	Office365 Office365Config `mapstructure:"office365"`

	// IgnoreEvents is a comma-separated list of lower-cased phrases; events
	// whose title contains one of them are skipped.
	IgnoreEvents string `mapstructure:"ignore_events"`

	ProjectIDPattern  string `mapstructure:"project_id_pattern"`
	ActivityIDPattern string `mapstructure:"activity_id_pattern"`
	DefaultProjectID  int    `mapstructure:"default_project_id"`
	DefaultActivityID int    `mapstructure:"default_activity_id"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenFile    string `mapstructure:"token_file"`
}

type Office365Config struct {
	BaseURL  string `mapstructure:"base_url"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type JiraConfig struct {
	APIURL      string `mapstructure:"api_url" validate:"omitempty,url"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	SearchQuery string `mapstructure:"search_query"`

	// EconomicFields names the custom field(s) carrying the billing project
	// reference, comma-separated, tried in order.
	EconomicFields    string `mapstructure:"economic_fields"`
	DefaultActivityID int    `mapstructure:"default_activity_id"`
	UseWorklog        bool   `mapstructure:"use_worklog"`
}

type EconomicConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	Agreement        string `mapstructure:"agreement" validate:"required"`
	Username         string `mapstructure:"username" validate:"required"`
	Password         string `mapstructure:"password"`
	DefaultProjectID int    `mapstructure:"default_project_id"`

	// AppendTitleForActivities lists activity ids (comma-separated) whose
	// entry description gets the event title appended to the activity name.
	AppendTitleForActivities string `mapstructure:"append_title_for_activities"`
}

// IgnorePhrases splits the configured ignore list. Empty elements are kept
// out here; the filter chain also guards against them.
func (c CalendarConfig) IgnorePhrases() []string {
	return splitTrimmed(c.IgnoreEvents)
}

// FieldNames returns the configured billing-reference field names in the
// order they should be tried.
func (c JiraConfig) FieldNames() []string {
	return splitTrimmed(c.EconomicFields)
}

// Enabled reports whether tracker processing is configured at all.
func (c JiraConfig) Enabled() bool {
	return strings.TrimSpace(c.APIURL) != ""
}

// AppendTitleSet parses the configured activity id set. Non-numeric elements
// are a configuration error surfaced at load time via Validate.
func (c EconomicConfig) AppendTitleSet() map[int]bool {
	set := make(map[int]bool)
	for _, item := range splitTrimmed(c.AppendTitleForActivities) {
		if id, err := strconv.Atoi(item); err == nil {
			set[id] = true
		}
	}
	return set
}

// SetDefaults sets default values if not provided.
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it.
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# econsync configuration
calendar:
  provider: "google"            # google | office365
  google:
    client_id: ""
    client_secret: ""
    token_file: "~/.econsync/google-token.json"
  office365:
    email: ""
    password: ""
  ignore_events: "lunch,private"
  project_id_pattern: '#economic[^0-9]+([0-9]+)'
  activity_id_pattern: '#activity[^0-9]+([0-9]+)'
  default_project_id: 0
  default_activity_id: 0

jira:
  api_url: ""                   # e.g. https://jira.example.com/rest/api/2/
  username: ""
  password: ""
  search_query: "assignee=currentUser() AND status != Done"
  economic_fields: ""           # e.g. customfield_10100,customfield_10200
  default_activity_id: 0
  use_worklog: true

economic:
  agreement: ""
  username: ""
  password: ""
  default_project_id: 0
  append_title_for_activities: ""
`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyCalendarProvider, ProviderGoogle)
	v.SetDefault(KeyJiraUseWorklog, true)
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateSections(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validateSections(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Calendar.Provider)) {
	case ProviderGoogle:
		if strings.TrimSpace(cfg.Calendar.Google.ClientID) == "" || strings.TrimSpace(cfg.Calendar.Google.ClientSecret) == "" {
			return fmt.Errorf("validation failed: calendar.google requires client_id and client_secret")
		}
	case ProviderOffice365:
		if strings.TrimSpace(cfg.Calendar.Office365.Email) == "" || cfg.Calendar.Office365.Password == "" {
			return fmt.Errorf("validation failed: calendar.office365 requires email and password")
		}
	}

	if cfg.Jira.Enabled() {
		if strings.TrimSpace(cfg.Jira.Username) == "" {
			return fmt.Errorf("validation failed: jira.username is required when jira.api_url is set")
		}
		if strings.TrimSpace(cfg.Jira.SearchQuery) == "" {
			return fmt.Errorf("validation failed: jira.search_query is required when jira.api_url is set")
		}
		if strings.TrimSpace(cfg.Jira.EconomicFields) == "" {
			return fmt.Errorf("validation failed: jira.economic_fields is required when jira.api_url is set")
		}
	}

	for _, item := range splitTrimmed(cfg.Economic.AppendTitleForActivities) {
		if _, err := strconv.Atoi(item); err != nil {
			return fmt.Errorf("validation failed: economic.append_title_for_activities element %q is not an activity id", item)
		}
	}

	return nil
}

func splitTrimmed(value string) []string {
	out := make([]string, 0, 4)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
