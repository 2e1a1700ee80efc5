package content

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeFetcher struct {
	text  string
	err   error
	calls []string
}

func (f *fakeFetcher) FetchAndExtract(ctx context.Context, pageURL string) (string, error) {
	f.calls = append(f.calls, pageURL)
	return f.text, f.err
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var xerr *Error
	if !errors.As(err, &xerr) {
		t.Fatalf("error = %v, want *content.Error", err)
	}
	return xerr.Kind
}

func TestExtractLiteralText(t *testing.T) {
	f := &fakeFetcher{}
	x := New(f, 20, 5000)

	input := strings.Repeat("a", 4000)
	got, err := x.Extract(context.Background(), "  "+input+"\n")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != input {
		t.Errorf("Extract returned %d chars, want the 4000-char input verbatim", len(got))
	}
	if len(f.calls) != 0 {
		t.Errorf("fetcher called for literal text: %v", f.calls)
	}
}

func TestExtractLengthBounds(t *testing.T) {
	x := New(&fakeFetcher{}, 20, 100)

	tests := []struct {
		name  string
		input string
		want  ErrorKind
	}{
		{"too short", "Too short.", TooShort},
		{"too long", strings.Repeat("word ", 30), TooLong},
		{"multibyte counted as characters", strings.Repeat("я", 101), TooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x.Extract(context.Background(), tt.input)
			if got := kindOf(t, err); got != tt.want {
				t.Errorf("kind = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := x.Extract(context.Background(), strings.Repeat("я", 100)); err != nil {
		t.Errorf("100 two-byte characters should fit max 100: %v", err)
	}
}

func TestExtractURL(t *testing.T) {
	article := "The city council approved the new park project on Tuesday evening."
	f := &fakeFetcher{text: "\n" + article + "\n"}
	x := New(f, 20, 5000)

	got, err := x.Extract(context.Background(), "https://example.com/news/park")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != article {
		t.Errorf("Extract = %q, want %q", got, article)
	}
	if len(f.calls) != 1 || f.calls[0] != "https://example.com/news/park" {
		t.Errorf("fetcher calls = %v", f.calls)
	}
}

func TestExtractURLFailures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
	}{
		{"fetch error", &fakeFetcher{err: errors.New("no such host")}},
		{"nothing extracted", &fakeFetcher{text: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fetcher, 20, 5000).Extract(context.Background(), "https://broken.example/article")
			if got := kindOf(t, err); got != ParseFailed {
				t.Errorf("kind = %v, want ParseFailed", got)
			}
		})
	}
}

func TestExtractShortArticle(t *testing.T) {
	x := New(&fakeFetcher{text: "Cookie banner"}, 20, 5000)
	_, err := x.Extract(context.Background(), "https://example.com/")
	if got := kindOf(t, err); got != TooShort {
		t.Errorf("kind = %v, want TooShort", got)
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/a", true},
		{"http://example.com", true},
		{"ftp://files.example.com/x", true},
		{"example.com/article", false},
		{"Note: prices rose sharply", false},
		{"Ivan and Maria decided to bake a pie", false},
		{"https://example.com/a and more text", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.input); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
