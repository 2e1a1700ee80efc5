package corpus

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrSourceNotFound is returned when the channel does not exist or has no
// public preview.
var ErrSourceNotFound = errors.New("channel not found or has no public preview")

// Post is one message from a channel's history.
type Post struct {
	ID   int64
	Text string
}

// Client reads public channel history from the t.me web preview.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

type Options struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	MinInterval time.Duration
}

// New creates a channel preview client with rate limiting.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://t.me"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		userAgent:   opts.UserAgent,
		minInterval: opts.MinInterval,
	}
}

// History yields up to limit posts from channel, most recent first. Pages
// are fetched lazily as the caller ranges; stopping the range stops paging.
// The sequence is not restartable: each call starts again from the newest
// post.
func (c *Client) History(ctx context.Context, channel string, limit int) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		var (
			before  int64
			yielded int
			first   = true
		)
		for yielded < limit {
			page, err := c.fetchPage(ctx, channel, before, first)
			if err != nil {
				yield(Post{}, err)
				return
			}
			first = false
			if len(page) == 0 {
				return
			}
			// The preview lists a page oldest first.
			slices.Reverse(page)
			for _, p := range page {
				if yielded >= limit {
					return
				}
				if !yield(p, nil) {
					return
				}
				yielded++
			}
			next := page[len(page)-1].ID
			if next <= 1 || (before != 0 && next >= before) {
				return
			}
			before = next
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, channel string, before int64, first bool) ([]Post, error) {
	if err := c.waitForRateLimit(ctx); err != nil {
		return nil, err
	}

	pageURL := fmt.Sprintf("%s/s/%s", c.baseURL, url.PathEscape(channel))
	if before > 0 {
		pageURL += "?before=" + strconv.FormatInt(before, 10)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch channel @%s: %w", channel, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("@%s: %w", channel, ErrSourceNotFound)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("t.me rate limit exceeded")
	default:
		return nil, fmt.Errorf("t.me returned status %d for @%s", resp.StatusCode, channel)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse preview page: %w", err)
	}

	posts := parsePosts(doc)
	// t.me redirects unknown or private channels to a landing page without
	// the channel header.
	if first && len(posts) == 0 && doc.Find(".tgme_channel_info").Length() == 0 {
		return nil, fmt.Errorf("@%s: %w", channel, ErrSourceNotFound)
	}
	return posts, nil
}

func parsePosts(doc *goquery.Document) []Post {
	var posts []Post
	doc.Find(".tgme_widget_message[data-post]").Each(func(_ int, s *goquery.Selection) {
		dataPost, _ := s.Attr("data-post")
		idx := strings.LastIndexByte(dataPost, '/')
		if idx < 0 {
			return
		}
		id, err := strconv.ParseInt(dataPost[idx+1:], 10, 64)
		if err != nil {
			return
		}
		posts = append(posts, Post{ID: id, Text: messageText(s.Find(".tgme_widget_message_text").First())})
	})
	return posts
}

// messageText returns the visible text of a message body with line breaks
// preserved.
func messageText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	s = s.Clone()
	s.Find("br").ReplaceWithHtml("\n")
	return strings.TrimSpace(s.Text())
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		wait := c.minInterval - elapsed
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastRequest = time.Now()
	return nil
}
