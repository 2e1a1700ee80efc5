package collector

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/thinkscotty/stylebot/internal/corpus"
	"github.com/thinkscotty/stylebot/internal/models"
	"github.com/thinkscotty/stylebot/internal/similarity"
)

// HistorySource yields a channel's posts, most recent first.
type HistorySource interface {
	History(ctx context.Context, channel string, limit int) iter.Seq2[corpus.Post, error]
}

type Options struct {
	MaxExamples int
	MinExamples int
	ScanLimit   int
	MinPostLen  int // posts must be strictly longer than this, in characters

	// DedupeThreshold skips posts whose trigram similarity to an earlier
	// example reaches it. Zero keeps every qualifying post.
	DedupeThreshold float64
}

// Collector samples reference examples from a style source.
type Collector struct {
	source HistorySource
	opts   Options
}

func New(source HistorySource, opts Options) *Collector {
	if opts.MaxExamples <= 0 {
		opts.MaxExamples = 5
	}
	if opts.MinExamples <= 0 {
		opts.MinExamples = 3
	}
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = 500
	}
	return &Collector{source: source, opts: opts}
}

// Collect parses input as a style source and samples examples from it.
// Malformed input fails with InvalidFormat before any history is read.
func (c *Collector) Collect(ctx context.Context, input string) (StyleSource, models.ExampleSet, error) {
	src, err := ParseStyleSource(input)
	if err != nil {
		return StyleSource{}, nil, err
	}
	set, err := c.CollectSource(ctx, src)
	return src, set, err
}

// CollectSource scans the source's history newest first, keeping posts that
// are long enough and contain the keyword (case-insensitively) when one is
// set. Scanning stops at MaxExamples or ScanLimit, whichever comes first.
func (c *Collector) CollectSource(ctx context.Context, src StyleSource) (models.ExampleSet, error) {
	keyword := strings.ToLower(strings.TrimSpace(src.Keyword))

	var (
		set     models.ExampleSet
		scanned int
		seen    *similarity.Set
	)
	if c.opts.DedupeThreshold > 0 {
		seen = similarity.New(c.opts.DedupeThreshold, 3).NewSet()
	}
	for post, err := range c.source.History(ctx, src.Channel, c.opts.ScanLimit) {
		if err != nil {
			if scanned == 0 {
				return nil, &Error{Kind: SourceUnavailable, Source: src.String(), Err: err}
			}
			slog.Warn("History scan interrupted, using posts read so far",
				"source", src.String(), "scanned", scanned, "error", err)
			break
		}
		scanned++

		text := strings.TrimSpace(post.Text)
		if text == "" || utf8.RuneCountInString(text) <= c.opts.MinPostLen {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(text), keyword) {
			continue
		}
		if seen != nil && !seen.AddIfDistinct(text) {
			continue
		}
		set = append(set, models.ReferenceExample{Ordinal: len(set) + 1, Text: text})
		if len(set) >= c.opts.MaxExamples {
			break
		}
	}

	slog.Info("Collected style examples",
		"source", src.String(), "scanned", scanned, "examples", len(set))

	if len(set) < c.opts.MinExamples {
		return nil, &Error{Kind: InsufficientExamples, Source: src.String(), Found: len(set)}
	}
	return set, nil
}
