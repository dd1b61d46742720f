package web

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bryanwahyu/sentichain/internal/middleware"
)

const (
	// SnippetChars is how much readable text a fetch returns.
	SnippetChars = 512
	maxBodyBytes = 2 << 20
	userAgent    = "sentichain/1.0 (+https://github.com/bryanwahyu/sentichain)"
	maxRedirects = 10
)

// Fetcher downloads a page and returns the start of its visible text.
type Fetcher struct {
	client *http.Client
	policy *bluemonday.Policy
}

// NewFetcher. The caller vets the first URL; redirect targets are checked
// with middleware.ValidateURL.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout, CheckRedirect: checkRedirect},
		policy: bluemonday.StrictPolicy(),
	}
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if err := middleware.ValidateURL(req.URL.String()); err != nil {
		return fmt.Errorf("redirect to %s refused: %w", req.URL.Redacted(), err)
	}
	return nil
}

// Fetch implements sentiment.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return truncateRunes(f.Text(string(body)), SnippetChars), nil
}

// Text strips markup and collapses whitespace.
func (f *Fetcher) Text(page string) string {
	// pisahkan tag supaya kata dari elemen bersebelahan tidak nempel
	page = strings.ReplaceAll(page, "<", " <")
	clean := html.UnescapeString(f.policy.Sanitize(page))
	return strings.Join(strings.Fields(clean), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
