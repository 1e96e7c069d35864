package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"econsync/config"
	"econsync/economic"
	"econsync/internal/timeutil"
)

const economicDefaultHost = "secure.e-conomic.com"

func resolveSyncDay(value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return timeutil.StartOfDay(time.Now()), false, nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", value)
	}
	return day, true, nil
}

// buildEconomicClient prefers captured session cookies over the configured
// password; a missing or stale state file falls back to the credential login
// unless no password is configured either.
func buildEconomicClient(cfg *config.Config, stateFileOverride string) (*economic.Client, error) {
	host, err := economicHost(cfg.Economic.BaseURL)
	if err != nil {
		return nil, err
	}

	sessionCookies := ""
	stateFile, err := resolveDefaultAuthStatePath(stateFileOverride)
	if err == nil {
		header, cookieErr := economic.SessionCookieHeaderFromStateFile(stateFile, host)
		if cookieErr == nil {
			sessionCookies = header
		} else if cfg.Economic.Password == "" {
			return nil, fmt.Errorf("no economic password configured and no usable auth state: %w", cookieErr)
		}
	}

	return economic.NewClient(economic.ClientConfig{
		BaseURL:        cfg.Economic.BaseURL,
		Agreement:      cfg.Economic.Agreement,
		Username:       cfg.Economic.Username,
		Password:       cfg.Economic.Password,
		SessionCookies: sessionCookies,
		UserAgent:      "econsync-sync/1.0",
	})
}

func economicHost(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return economicDefaultHost, nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid economic base URL %q", baseURL)
	}
	return parsed.Host, nil
}

func resolveDefaultAuthStatePath(explicitPath string) (string, error) {
	if strings.TrimSpace(explicitPath) != "" {
		return explicitPath, nil
	}
	return economic.DefaultAuthStatePath()
}

func resolveProfileDir(explicitDir string) (string, bool, error) {
	if strings.TrimSpace(explicitDir) != "" {
		return explicitDir, false, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(home, ".econsync")
	if err := os.MkdirAll(base, 0o700); err != nil {
		return "", false, fmt.Errorf("create directory %q: %w", base, err)
	}
	profileDir, err := os.MkdirTemp(base, "chrome-profile-*")
	if err != nil {
		return "", false, fmt.Errorf("create temporary profile dir: %w", err)
	}
	return profileDir, true, nil
}

func ensureParentDir(path string, mode os.FileMode) error {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, mode); err != nil {
		return fmt.Errorf("create directory %q: %w", parent, err)
	}
	return nil
}
