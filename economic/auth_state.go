package economic

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SessionCookiePrefix marks the classic ASP session cookies the backend
// issues (ASPSESSIONIDxxxxxxxx=...). At least one must be present for a
// captured browser state to be usable.
const SessionCookiePrefix = "ASPSESSIONID"

type storageState struct {
	Cookies []stateCookie `json:"cookies"`
}

type stateCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

func DefaultAuthStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".econsync", "economic-auth-state.json"), nil
}

// SessionCookieHeaderFromStateFile builds a Cookie header from a browser auth
// state JSON captured by "econsync auth login", filtered to the target host.
func SessionCookieHeaderFromStateFile(path, targetHost string) (string, error) {
	content, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("read auth state file: %w", err)
	}

	var state storageState
	if err := json.Unmarshal(content, &state); err != nil {
		return "", fmt.Errorf("decode auth state file: %w", err)
	}

	return sessionCookieHeaderFromState(state, targetHost)
}

func sessionCookieHeaderFromState(state storageState, targetHost string) (string, error) {
	host := normalizeHost(targetHost)
	if host == "" {
		return "", errors.New("target host is required")
	}

	values := map[string]string{}
	hasSession := false
	for _, cookie := range state.Cookies {
		if cookie.Name == "" || cookie.Value == "" {
			continue
		}
		if !CookieDomainMatches(cookie.Domain, host) {
			continue
		}
		values[cookie.Name] = cookie.Value
		if strings.HasPrefix(cookie.Name, SessionCookiePrefix) {
			hasSession = true
		}
	}

	if !hasSession {
		return "", fmt.Errorf(
			"auth state has no %s* cookie for host %q; run \"econsync auth login\" again",
			SessionCookiePrefix,
			host,
		)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+values[name])
	}
	return strings.Join(pairs, "; "), nil
}

// CookieDomainMatches reports whether a cookie domain covers the target host,
// including parent-domain cookies (".e-conomic.com" covers
// "secure.e-conomic.com").
func CookieDomainMatches(cookieDomain, targetHost string) bool {
	cookieDomain = normalizeHost(cookieDomain)
	targetHost = normalizeHost(targetHost)
	if cookieDomain == "" || targetHost == "" {
		return false
	}
	return cookieDomain == targetHost || strings.HasSuffix(targetHost, "."+cookieDomain)
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), ".")
}
