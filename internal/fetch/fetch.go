// Package fetch acquires page text for extraction: the target page plus, when
// one is linked, a contact-like page.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxBodySize caps how much of a page is read. Marketing sites fit
// comfortably; anything larger is noise for the extraction prompt.
const maxBodySize = 512 * 1024

const userAgent = "Mozilla/5.0 (compatible; DronedexBot/1.0)"

// Fetcher downloads pages over plain net/http and converts them to text.
// No JS rendering, no retries: one attempt per page, bounded by a timeout.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the given per-request timeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// FetchWithContactPage fetches a URL's text and, when the page links to a
// contact-like page (first label matching contact/about/support/reach), that
// page's text too, joined by a blank line. A failed primary fetch degrades to
// an empty string; a failed contact fetch is swallowed. Never returns an error
// so a dead site flows through the pipeline as empty input.
func (f *Fetcher) FetchWithContactPage(ctx context.Context, pageURL string) string {
	html, err := f.fetchPage(ctx, pageURL)
	if err != nil {
		zap.L().Warn("fetch: primary page failed",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return ""
	}

	mainText := pageText(html)

	extraText := ""
	if link := findContactLink(html); link != "" {
		link = resolveLink(pageURL, link)
		contactHTML, err := f.fetchPage(ctx, link)
		if err != nil {
			zap.L().Debug("fetch: contact page failed",
				zap.String("url", link),
				zap.Error(err),
			)
		} else {
			extraText = pageText(contactHTML)
		}
	}

	return mainText + "\n\n" + extraText
}

// fetchPage performs a single GET and returns the raw HTML.
func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetch: get")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", eris.Errorf("fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", eris.Wrap(err, "fetch: read body")
	}

	return string(body), nil
}

// pageText converts HTML to plain text suitable for the extraction prompt.
// html-to-markdown keeps link hrefs and heading structure that help the
// model; on conversion failure we fall back to a bare tag strip.
func pageText(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return stripHTML(html)
	}
	return strings.TrimSpace(md)
}

var (
	anchorRe = regexp.MustCompile(`(?is)<a\s[^>]*href=["']([^"'#][^"']*)["'][^>]*>(.*?)</a>`)
	labelRe  = regexp.MustCompile(`(?i)contact|about|support|reach`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
)

// findContactLink returns the href of the first anchor whose visible label
// matches the contact-page heuristic, or "". First match wins; no attempt is
// made to find the canonical contact page.
func findContactLink(html string) string {
	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		label := strings.TrimSpace(tagRe.ReplaceAllString(m[2], " "))
		if labelRe.MatchString(label) {
			return m[1]
		}
	}
	return ""
}

// resolveLink joins a relative href with the base URL's trimmed path.
func resolveLink(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}

// stripHTML removes script/style/nav/footer blocks, strips tags, decodes
// common entities, and collapses whitespace.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	spaceRe := regexp.MustCompile(`[ \t]+`)
	html = spaceRe.ReplaceAllString(html, " ")

	nlRe := regexp.MustCompile(`\n{3,}`)
	html = nlRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}
