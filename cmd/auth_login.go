package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"

	"econsync/config"
	"econsync/economic"
)

var (
	authLoginStateFile    string
	authLoginProfileDir   string
	authLoginSkipVerify   bool
	authLoginBrowserBin   string
	authLoginTimeout      time.Duration
	authLoginDebugCookies bool
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start interactive browser login and save authenticated state.",
	Long: `Open a visible browser on the Economic login page and save auth state as JSON.

The command waits until the Economic session cookies show up. By default, it
also verifies the session by resolving the employee id with a test call.`,
	Example: `
  # Open browser, log in manually, save auth state, verify access
  econsync auth login
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		stateFile, err := resolveDefaultAuthStatePath(authLoginStateFile)
		if err != nil {
			return err
		}
		profileDir, isTempProfile, err := resolveProfileDir(authLoginProfileDir)
		if err != nil {
			return err
		}
		if isTempProfile {
			defer os.RemoveAll(profileDir)
		}

		host, err := economicHost(cfg.Economic.BaseURL)
		if err != nil {
			return err
		}
		loginURL := "https://" + host

		if err := ensureParentDir(stateFile, 0o700); err != nil {
			return err
		}
		if err := os.MkdirAll(profileDir, 0o700); err != nil {
			return fmt.Errorf("create profile directory %q: %w", profileDir, err)
		}

		allocOptions := []chromedp.ExecAllocatorOption{
			chromedp.Flag("headless", false),
			chromedp.UserDataDir(profileDir),
			chromedp.Flag("disable-infobars", true),
			chromedp.Flag("new-window", true),
			chromedp.Flag("restore-last-session", false),
			chromedp.NoDefaultBrowserCheck,
			chromedp.NoFirstRun,
		}
		if strings.TrimSpace(authLoginBrowserBin) != "" {
			allocOptions = append(allocOptions, chromedp.ExecPath(strings.TrimSpace(authLoginBrowserBin)))
		}

		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOptions...)
		defer allocCancel()

		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		if err := chromedp.Run(ctx,
			network.Enable(),
			chromedp.Navigate(loginURL),
		); err != nil {
			return fmt.Errorf("open browser and navigate failed: %w", err)
		}

		fmt.Println("Complete the Economic login in the opened browser.")
		fmt.Printf("Waiting for Economic session cookies (timeout: %s)...\n", authLoginTimeout)
		waitCtx, waitCancel := context.WithTimeout(ctx, authLoginTimeout)
		defer waitCancel()
		if err := waitForSessionCookies(waitCtx, host, authLoginDebugCookies); err != nil {
			return err
		}

		allCookies, err := getBrowserCookies(ctx)
		if err != nil {
			return fmt.Errorf("read browser cookies failed: %w", err)
		}

		state := authStateFile{
			Cookies: filterCookiesForHost(allCookies, host),
			Origins: []any{},
		}

		content, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("encode auth state: %w", err)
		}
		if err := os.WriteFile(stateFile, content, 0o600); err != nil {
			return fmt.Errorf("write auth state file: %w", err)
		}

		cookieHeader, err := economic.SessionCookieHeaderFromStateFile(stateFile, host)
		if err != nil {
			return fmt.Errorf("extract session cookies from %q: %w", stateFile, err)
		}

		if authLoginSkipVerify {
			fmt.Printf("Auth state saved: %s\n", stateFile)
			fmt.Println("Session cookies are present and ready for requests.")
			return nil
		}

		client, err := economic.NewClient(economic.ClientConfig{
			BaseURL:        cfg.Economic.BaseURL,
			Agreement:      cfg.Economic.Agreement,
			Username:       cfg.Economic.Username,
			SessionCookies: cookieHeader,
			UserAgent:      "econsync-auth/1.0",
		})
		if err != nil {
			return err
		}

		verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer verifyCancel()

		if err := client.Login(verifyCtx); err != nil {
			return fmt.Errorf("auth verification failed: %w", err)
		}

		fmt.Printf("Auth state saved: %s\n", stateFile)
		fmt.Printf("Auth verification successful. Employee id: %s\n", client.EmployeeID())
		return nil
	},
}

type authStateFile struct {
	Cookies []authStateCookie `json:"cookies"`
	Origins []any             `json:"origins"`
}

type authStateCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

func waitForSessionCookies(ctx context.Context, host string, debug bool) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		cookies, err := getBrowserCookies(ctx)
		if debug {
			if err != nil {
				fmt.Printf("[auth-debug] cookie-read-error=%v\n", err)
			} else {
				fmt.Printf("[auth-debug] %s\n", summarizeCookieInventory(cookies))
			}
		}
		if err == nil && hasSessionCookies(cookies, host) {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf(
					"timed out waiting for Economic session cookies; finish login in browser and retry (or increase --timeout)",
				)
			}
			return fmt.Errorf("waiting for Economic login interrupted: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func hasSessionCookies(cookies []*network.Cookie, host string) bool {
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		if !economic.CookieDomainMatches(cookie.Domain, host) {
			continue
		}
		if strings.HasPrefix(cookie.Name, economic.SessionCookiePrefix) && strings.TrimSpace(cookie.Value) != "" {
			return true
		}
	}
	return false
}

func filterCookiesForHost(cookies []*network.Cookie, host string) []authStateCookie {
	filtered := make([]authStateCookie, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		if !economic.CookieDomainMatches(cookie.Domain, host) {
			continue
		}
		filtered = append(filtered, authStateCookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Domain:   cookie.Domain,
			Path:     cookie.Path,
			Expires:  cookie.Expires,
			HTTPOnly: cookie.HTTPOnly,
			Secure:   cookie.Secure,
			SameSite: string(cookie.SameSite),
		})
	}
	return filtered
}

func getBrowserCookies(ctx context.Context) ([]*network.Cookie, error) {
	chromeCtx := chromedp.FromContext(ctx)
	if chromeCtx == nil || chromeCtx.Browser == nil {
		return nil, errors.New("browser context not available for cookie read")
	}
	browserExecutorCtx := cdp.WithExecutor(ctx, chromeCtx.Browser)
	return storage.GetCookies().Do(browserExecutorCtx)
}

func summarizeCookieInventory(cookies []*network.Cookie) string {
	if len(cookies) == 0 {
		return "cookies=0"
	}

	byDomain := make(map[string][]string)
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		domain := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cookie.Domain)), ".")
		if domain == "" {
			domain = "<empty-domain>"
		}
		name := strings.TrimSpace(cookie.Name)
		if name == "" {
			continue
		}
		byDomain[domain] = append(byDomain[domain], name)
	}

	domains := make([]string, 0, len(byDomain))
	for domain := range byDomain {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	parts := make([]string, 0, len(domains))
	for _, domain := range domains {
		names := byDomain[domain]
		sort.Strings(names)
		parts = append(parts, fmt.Sprintf("%s:[%s]", domain, strings.Join(names, " ")))
	}
	return fmt.Sprintf("cookies=%d %s", len(cookies), strings.Join(parts, " "))
}

func init() {
	authCmd.AddCommand(authLoginCmd)

	authLoginCmd.Flags().StringVar(&authLoginStateFile, "state-file", "", "Path to auth state JSON (default: $HOME/.econsync/economic-auth-state.json)")
	authLoginCmd.Flags().StringVar(&authLoginProfileDir, "profile-dir", "", "Browser profile directory (default: temporary profile under $HOME/.econsync)")
	authLoginCmd.Flags().BoolVar(&authLoginSkipVerify, "skip-verify", false, "Skip the verification call after saving auth state")
	authLoginCmd.Flags().StringVar(&authLoginBrowserBin, "browser", "", "Browser executable override")
	authLoginCmd.Flags().DurationVar(&authLoginTimeout, "timeout", 5*time.Minute, "How long to wait for the login to complete")
	authLoginCmd.Flags().BoolVar(&authLoginDebugCookies, "debug-cookies", false, "Print the cookie inventory while waiting")
}
