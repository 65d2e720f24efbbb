// Package mailman fetches private mailman/pipermail archives: it keeps an
// authenticated session alive across runs via persisted cookies and crawls
// the archive pages for listing URLs.
package mailman

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tmoulton/seminar-events/internal/logger"
)

const (
	UserAgent = "seminar-events/1.0 (github.com/tmoulton/seminar-events)"
	Timeout   = 30 * time.Second

	maxRetries = 3
)

// Credentials is the stored archive login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is an authenticated archive session. Cookies are restored from
// disk when possible so most runs skip the login round-trip entirely.
type Session struct {
	client      *http.Client
	baseURL     string // host + list id, no trailing slash
	cookiesPath string
	creds       Credentials
}

// NewSession opens a session against host/listID. If a cookie file exists it
// is restored; otherwise the session logs in with the stored credentials and
// saves the resulting cookies.
func NewSession(host, listID, credentialsPath, cookiesPath string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	s := &Session{
		client:      &http.Client{Jar: jar, Timeout: Timeout},
		baseURL:     strings.TrimSuffix(host, "/") + "/" + listID,
		cookiesPath: cookiesPath,
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	if err := json.Unmarshal(data, &s.creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if err := s.restoreCookies(); err != nil {
		logger.Debug("no usable cookies, logging in", logger.Fields{"list": listID})
		if err := s.login(); err != nil {
			return nil, err
		}
		if err := s.saveCookies(); err != nil {
			logger.Warn("could not save session cookies", logger.Fields{"path": cookiesPath})
		}
	}
	return s, nil
}

// login posts the stored credentials to the list's private archive page.
func (s *Session) login() error {
	form := url.Values{
		"username": {s.creds.Username},
		"password": {s.creds.Password},
	}
	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	return nil
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Session) saveCookies() error {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return err
	}
	var stored []storedCookie
	for _, c := range s.client.Jar.Cookies(u) {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.cookiesPath, data, 0600)
}

func (s *Session) restoreCookies() error {
	data, err := os.ReadFile(s.cookiesPath)
	if err != nil {
		return err
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	if len(stored) == 0 {
		return fmt.Errorf("cookie file %s is empty", s.cookiesPath)
	}

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, len(stored))
	for i, c := range stored {
		cookies[i] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	s.client.Jar.SetCookies(u, cookies)
	return nil
}

// Get fetches a URL within the session, retrying transient failures with
// exponential backoff.
func (s *Session) Get(ctx context.Context, pageURL string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", pageURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading %s: %w", pageURL, err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// BaseURL returns the archive root for this session's list.
func (s *Session) BaseURL() string {
	return s.baseURL
}
