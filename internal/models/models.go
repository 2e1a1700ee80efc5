package models

import "time"

// ReferenceExample is one sampled post from a style source.
type ReferenceExample struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// ExampleSet is an ordered set of reference examples, most recent post first.
type ExampleSet []ReferenceExample

// Texts returns the example texts in ordinal order.
func (s ExampleSet) Texts() []string {
	out := make([]string, len(s))
	for i, ex := range s {
		out[i] = ex.Text
	}
	return out
}

type RewriteStatus string

const (
	RewriteOK     RewriteStatus = "ok"
	RewriteFailed RewriteStatus = "failed"
)

// RewriteLog records the outcome of one finished restyling run.
type RewriteLog struct {
	ID           string        `json:"id"`
	ChatID       int64         `json:"chat_id"`
	StyleSource  string        `json:"style_source"`
	Keyword      string        `json:"keyword,omitempty"`
	ExampleCount int           `json:"example_count"`
	SourceChars  int           `json:"source_chars"`
	OutputChars  int           `json:"output_chars"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Status       RewriteStatus `json:"status"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	DurationMs   int64         `json:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at"`
}

type Stats struct {
	TotalRewrites     int   `json:"total_rewrites"`
	SucceededRewrites int   `json:"succeeded_rewrites"`
	FailedRewrites    int   `json:"failed_rewrites"`
	DistinctChats     int   `json:"distinct_chats"`
	DatabaseSizeBytes int64 `json:"database_size_bytes"`
}
