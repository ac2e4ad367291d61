// Package pageread extracts readable text from web pages for use as
// podcast and chat context.
package pageread

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	apierrors "github.com/sidebuddy/sidebuddy/internal/errors"
	"github.com/sidebuddy/sidebuddy/internal/models"
)

const (
	// noiseSelector matches nodes that never carry article text
	noiseSelector = "script,style,noscript,nav,footer,header,aside,form,iframe,svg"
	// contentSelector matches nodes whose text is collected, in document order
	contentSelector = "h1,h2,h3,h4,p,li,pre,blockquote"

	maxPageBytes = 8 << 20
	userAgent    = "sidebuddy/1.0 (+https://github.com/sidebuddy/sidebuddy)"
)

// Page is the extracted text of a web page
type Page struct {
	URL   string
	Title string
	Text  string
}

// Extract parses HTML and returns its title and readable text. Text is
// gathered from headings, paragraphs, list items, code and quotes; when the
// page has none of those the whole body text is used.
func Extract(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var blocks []string
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested matches are reported by their outermost ancestor
		if s.ParentsFiltered(contentSelector).Length() > 0 {
			return
		}
		if text := normalizeText(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	text := strings.Join(blocks, "\n")
	if text == "" {
		text = normalizeText(doc.Find("body").Text())
	}

	return Page{
		Title: normalizeText(doc.Find("title").First().Text()),
		Text:  Truncate(text, models.MaxMessageLength),
	}, nil
}

// normalizeText collapses runs of whitespace into single spaces
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// Truncate cuts s to at most maxRunes runes without splitting a rune
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}

// URLProvider fetches and extracts a page on every call
type URLProvider struct {
	url    string
	client *http.Client
}

// URLOption configures a URLProvider
type URLOption func(*URLProvider)

// WithHTTPClient sets the HTTP client used to fetch pages
func WithHTTPClient(client *http.Client) URLOption {
	return func(p *URLProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// NewURLProvider creates a provider for an http or https page
func NewURLProvider(rawURL string, opts ...URLOption) (*URLProvider, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid page URL %q: expected http or https", rawURL)
	}

	p := &URLProvider{
		url:    u.String(),
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// URL returns the page address
func (p *URLProvider) URL() string {
	return p.url
}

// Fetch downloads the page and extracts its text
func (p *URLProvider) Fetch(ctx context.Context) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return Page{}, apierrors.NewNetworkError("fetch page", p.url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Page{}, apierrors.NewRemoteRequestError(resp.StatusCode, p.url,
			fmt.Sprintf("failed to fetch page, status code: %d", resp.StatusCode), "")
	}

	var body io.Reader = io.LimitReader(resp.Body, maxPageBytes)
	// Pages served in legacy encodings are converted to UTF-8
	if decoded, err := charset.NewReader(body, resp.Header.Get("Content-Type")); err == nil {
		body = decoded
	} else {
		slog.Debug("unknown page charset, reading as UTF-8", "url", p.url, "error", err)
	}

	page, err := Extract(body)
	if err != nil {
		return Page{}, err
	}
	page.URL = p.url

	slog.Debug("page extracted", "url", p.url, "title", page.Title, "chars", utf8.RuneCountInString(page.Text))
	return page, nil
}

// PageContent returns the extracted page text
func (p *URLProvider) PageContent(ctx context.Context) (string, error) {
	page, err := p.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return page.Text, nil
}

// TextProvider serves fixed text, truncated to the message limit
type TextProvider string

// PageContent returns the text
func (t TextProvider) PageContent(context.Context) (string, error) {
	return Truncate(strings.TrimSpace(string(t)), models.MaxMessageLength), nil
}

// ReadText reads context text from r, typically a file or stdin
func ReadText(r io.Reader) (TextProvider, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return TextProvider(data), nil
}
