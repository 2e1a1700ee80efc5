package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

type ErrorKind int

const (
	ParseFailed ErrorKind = iota + 1
	TooShort
	TooLong
)

func (k ErrorKind) String() string {
	switch k {
	case ParseFailed:
		return "parse_failed"
	case TooShort:
		return "too_short"
	case TooLong:
		return "too_long"
	default:
		return "unknown"
	}
}

// Error is returned for every rejected content source.
type Error struct {
	Kind   ErrorKind
	Length int // characters, for TooShort and TooLong
	Limit  int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case TooShort:
		return fmt.Sprintf("%s: %d characters, minimum is %d", e.Kind, e.Length, e.Limit)
	case TooLong:
		return fmt.Sprintf("%s: %d characters, maximum is %d", e.Kind, e.Length, e.Limit)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ArticleFetcher downloads a page and returns its main text.
type ArticleFetcher interface {
	FetchAndExtract(ctx context.Context, pageURL string) (string, error)
}

// Extractor normalizes user input into plain source text.
type Extractor struct {
	fetcher ArticleFetcher
	minLen  int
	maxLen  int
}

func New(fetcher ArticleFetcher, minLen, maxLen int) *Extractor {
	return &Extractor{fetcher: fetcher, minLen: minLen, maxLen: maxLen}
}

// Extract returns the text to restyle. Input that is a single token with a
// URI scheme is fetched as an article; anything else is used verbatim.
// Text outside [minLen, maxLen] characters is rejected.
func (x *Extractor) Extract(ctx context.Context, input string) (string, error) {
	text := strings.TrimSpace(input)

	if IsURL(text) {
		article, err := x.fetcher.FetchAndExtract(ctx, text)
		if err != nil {
			return "", &Error{Kind: ParseFailed, Err: err}
		}
		article = strings.TrimSpace(article)
		if article == "" {
			return "", &Error{Kind: ParseFailed, Err: fmt.Errorf("no text extracted from %s", text)}
		}
		text = article
	}

	n := utf8.RuneCountInString(text)
	if n < x.minLen {
		return "", &Error{Kind: TooShort, Length: n, Limit: x.minLen}
	}
	if n > x.maxLen {
		return "", &Error{Kind: TooLong, Length: n, Limit: x.maxLen}
	}
	return text, nil
}

// IsURL reports whether s should be treated as a link rather than text.
// Free text such as "Note: prices rose" has a parseable scheme too, so
// anything containing whitespace is text.
func IsURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}
