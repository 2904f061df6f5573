// Package search resolves a company name to its website through the
// DuckDuckGo HTML endpoint.
package search

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://html.duckduckgo.com/html/"
	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0"

	// queryTail biases results toward the drone industry.
	queryTail = " drone UAV company official website"

	maxBodySize = 1 << 20
)

// resultRe pulls the first organic result link out of the HTML listing.
var resultRe = regexp.MustCompile(`(?is)<a[^>]*class="[^"]*result__a[^"]*"[^>]*href="([^"]+)"`)

// Resolver finds official websites for company names.
type Resolver struct {
	baseURL string
	client  *http.Client
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseURL overrides the search endpoint. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(r *Resolver) {
		r.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// NewResolver creates a Resolver with sane defaults.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first result URL for the company name, with any
// DuckDuckGo redirect wrapper removed. An empty string means no result.
func (r *Resolver) Resolve(ctx context.Context, companyName string) (string, error) {
	query := companyName + queryTail
	searchURL := fmt.Sprintf("%s?q=%s", r.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "search: build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "search: query %q", companyName)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", eris.Wrap(err, "search: read response")
	}

	m := resultRe.FindSubmatch(body)
	if m == nil {
		zap.L().Info("search: no results", zap.String("company", companyName))
		return "", nil
	}

	raw := html.UnescapeString(strings.TrimSpace(string(m[1])))
	resolved := CleanRedirectURL(raw)
	zap.L().Debug("search: resolved website",
		zap.String("company", companyName),
		zap.String("website", resolved),
	)
	return resolved, nil
}

// CleanRedirectURL unwraps DuckDuckGo redirect links (the uddg or u query
// parameter) back to the destination URL. Anything else passes through
// untouched, including URLs that fail to parse.
func CleanRedirectURL(raw string) string {
	if !strings.Contains(raw, "duckduckgo.com/l/") {
		return raw
	}

	// Protocol-relative links come back from the HTML endpoint.
	candidate := raw
	if strings.HasPrefix(candidate, "//") {
		candidate = "https:" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return raw
	}

	params := parsed.Query()
	if dest := params.Get("uddg"); dest != "" {
		return dest
	}
	if dest := params.Get("u"); dest != "" {
		return dest
	}
	return raw
}
