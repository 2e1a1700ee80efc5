package collector

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/thinkscotty/stylebot/internal/corpus"
)

// fakeHistory serves a fixed post list, newest first, and records how far a
// scan got.
type fakeHistory struct {
	posts   []string
	failAt  int // yield an error before post index failAt; -1 never
	read    int
	calls   int
	channel string
}

func (f *fakeHistory) History(ctx context.Context, channel string, limit int) iter.Seq2[corpus.Post, error] {
	f.calls++
	f.channel = channel
	return func(yield func(corpus.Post, error) bool) {
		for i, text := range f.posts {
			if i >= limit {
				return
			}
			if i == f.failAt {
				yield(corpus.Post{}, errors.New("connection reset"))
				return
			}
			f.read++
			if !yield(corpus.Post{ID: int64(len(f.posts) - i), Text: text}, nil) {
				return
			}
		}
	}
}

func longPost(n int) string {
	return fmt.Sprintf("Post number %d with enough text to qualify as an example", n)
}

func newFake(posts ...string) *fakeHistory {
	return &fakeHistory{posts: posts, failAt: -1}
}

func TestCollectProceedsWithEnoughExamples(t *testing.T) {
	src := newFake(longPost(1), "short", longPost(2), "", longPost(3), longPost(4))
	c := New(src, Options{MaxExamples: 5, MinExamples: 2, ScanLimit: 100, MinPostLen: 20})

	got, set, err := c.Collect(context.Background(), "@channel")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got.Channel != "channel" || src.channel != "channel" {
		t.Errorf("scanned channel %q, parsed %q", src.channel, got.Channel)
	}
	if len(set) != 4 {
		t.Fatalf("len(set) = %d, want 4", len(set))
	}
	for i, ex := range set {
		if ex.Ordinal != i+1 {
			t.Errorf("set[%d].Ordinal = %d, want %d", i, ex.Ordinal, i+1)
		}
		if ex.Text != longPost(i+1) {
			t.Errorf("set[%d].Text = %q, want most recent first", i, ex.Text)
		}
	}
}

func TestCollectInsufficientExamples(t *testing.T) {
	src := newFake(longPost(1), "tiny", "also tiny")
	c := New(src, Options{MaxExamples: 5, MinExamples: 2, ScanLimit: 100, MinPostLen: 20})

	_, set, err := c.Collect(context.Background(), "@channel")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != InsufficientExamples {
		t.Fatalf("error = %v, want InsufficientExamples", err)
	}
	if cerr.Found != 1 {
		t.Errorf("Found = %d, want 1", cerr.Found)
	}
	if set != nil {
		t.Errorf("set = %v, want nil on failure", set)
	}
}

func TestCollectStopsAtMaximum(t *testing.T) {
	var posts []string
	for i := 1; i <= 50; i++ {
		posts = append(posts, longPost(i))
	}
	src := newFake(posts...)
	c := New(src, Options{MaxExamples: 5, MinExamples: 3, ScanLimit: 500, MinPostLen: 20})

	_, set, err := c.Collect(context.Background(), "@channel")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(set) != 5 {
		t.Errorf("len(set) = %d, want 5", len(set))
	}
	if src.read != 5 {
		t.Errorf("read %d posts, want scan to stop after 5", src.read)
	}
}

func TestCollectRespectsScanLimit(t *testing.T) {
	posts := []string{"a", "b", "c", longPost(1), longPost(2), longPost(3)}
	src := newFake(posts...)
	c := New(src, Options{MaxExamples: 5, MinExamples: 1, ScanLimit: 3, MinPostLen: 20})

	_, _, err := c.Collect(context.Background(), "@channel")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != InsufficientExamples || cerr.Found != 0 {
		t.Fatalf("error = %v, want InsufficientExamples with 0 found", err)
	}
}

func TestCollectKeywordFilter(t *testing.T) {
	src := newFake(
		"Markets rallied as the ECONOMY grew faster than expected",
		"Football club wins the national cup after a long final",
		"Experts discuss the economy and inflation in a new report",
		"The economy minister announced a new budget on Friday",
	)
	c := New(src, Options{MaxExamples: 5, MinExamples: 2, ScanLimit: 100, MinPostLen: 20})

	_, set, err := c.Collect(context.Background(), "@channel#Economy")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("len(set) = %d, want 3", len(set))
	}
	for _, ex := range set {
		if !strings.Contains(strings.ToLower(ex.Text), "economy") {
			t.Errorf("example %q does not contain keyword", ex.Text)
		}
	}
}

func TestCollectSourceEmptyKeywordMatchesAll(t *testing.T) {
	src := newFake(longPost(1), longPost(2), longPost(3))
	c := New(src, Options{MaxExamples: 5, MinExamples: 3, ScanLimit: 100, MinPostLen: 20})

	set, err := c.CollectSource(context.Background(), StyleSource{Channel: "channel", Keyword: "  "})
	if err != nil {
		t.Fatalf("CollectSource: %v", err)
	}
	if len(set) != 3 {
		t.Errorf("len(set) = %d, want 3", len(set))
	}
}

func TestCollectInvalidFormatSkipsScan(t *testing.T) {
	src := newFake(longPost(1))
	c := New(src, Options{})

	_, _, err := c.Collect(context.Background(), "channel without sigil")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != InvalidFormat {
		t.Fatalf("error = %v, want InvalidFormat", err)
	}
	if src.calls != 0 {
		t.Errorf("History called %d times, want 0", src.calls)
	}
}

func TestCollectSourceUnavailable(t *testing.T) {
	src := newFake(longPost(1), longPost(2), longPost(3))
	src.failAt = 0
	c := New(src, Options{MinExamples: 1})

	_, _, err := c.Collect(context.Background(), "@missing")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != SourceUnavailable {
		t.Fatalf("error = %v, want SourceUnavailable", err)
	}
	if cerr.Unwrap() == nil {
		t.Error("SourceUnavailable should wrap the history error")
	}
}

func TestCollectUsesPostsReadBeforeFailure(t *testing.T) {
	src := newFake(longPost(1), longPost(2), longPost(3), longPost(4))
	src.failAt = 3
	c := New(src, Options{MaxExamples: 5, MinExamples: 3, ScanLimit: 100, MinPostLen: 20})

	_, set, err := c.Collect(context.Background(), "@channel")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(set) != 3 {
		t.Errorf("len(set) = %d, want 3", len(set))
	}
}

func TestCollectDedupe(t *testing.T) {
	dup := "Breaking: the city council approved the new park project today"
	src := newFake(dup, dup+"!", longPost(1), longPost(50))
	c := New(src, Options{MaxExamples: 5, MinExamples: 1, ScanLimit: 100, MinPostLen: 20, DedupeThreshold: 0.9})

	_, set, err := c.Collect(context.Background(), "@channel")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for i, ex := range set {
		if i > 0 && strings.HasPrefix(ex.Text, "Breaking") {
			t.Errorf("near-duplicate kept at ordinal %d", ex.Ordinal)
		}
	}
}
