package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Scraper fetches article pages and extracts their main text.
type Scraper struct {
	userAgent      string
	requestTimeout time.Duration
}

// New creates a Scraper that identifies itself with userAgent.
func New(userAgent string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{userAgent: userAgent, requestTimeout: timeout}
}

// Containers that usually hold an article body, best first.
var contentSelectors = []string{
	"[itemprop=articleBody]",
	"article",
	".article-body", ".article__text", ".article-text",
	".entry-content", ".post-content", ".story-body",
	"main", "#content", ".content",
}

// Elements that never belong to the article text.
const noiseSelector = "script, style, noscript, iframe, svg, form, nav, header, footer, aside, figcaption, .share, .related, .advert, .ads"

const minArticleChars = 200

// FetchAndExtract downloads pageURL and returns its main text, paragraphs
// separated by blank lines.
func (s *Scraper) FetchAndExtract(ctx context.Context, pageURL string) (string, error) {
	if err := ValidateURL(pageURL); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.requestTimeout)

	var (
		mu        sync.Mutex
		text      string
		scrapeErr error
	)

	c.OnHTML("html", func(e *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()
		if text == "" {
			text = extractMainText(e.DOM)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		scrapeErr = fmt.Errorf("scrape error for %s: %w (status: %d)", pageURL, err, r.StatusCode)
	})

	if err := c.Visit(pageURL); err != nil {
		return "", fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if scrapeErr != nil {
		return "", scrapeErr
	}
	if text == "" {
		return "", fmt.Errorf("no article text found at %s", pageURL)
	}
	return text, nil
}

// extractMainText picks the first article-like container with enough
// paragraph text, falling back to every paragraph on the page.
func extractMainText(root *goquery.Selection) string {
	root = root.Clone()
	root.Find(noiseSelector).Remove()

	for _, selector := range contentSelectors {
		var best string
		root.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if t := paragraphs(sel); len(t) >= minArticleChars {
				best = t
				return false
			}
			return true
		})
		if best != "" {
			return best
		}
	}

	if t := paragraphs(root.Find("body")); t != "" {
		return t
	}
	return cleanText(root.Find("body").Text())
}

func paragraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := cleanText(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n")
}

// ValidateURL checks if a URL is valid and uses http/https.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
