package collector

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	InvalidFormat ErrorKind = iota + 1
	SourceUnavailable
	InsufficientExamples
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidFormat:
		return "invalid_format"
	case SourceUnavailable:
		return "source_unavailable"
	case InsufficientExamples:
		return "insufficient_examples"
	default:
		return "unknown"
	}
}

// Error is returned by the collector for every rejected style source.
type Error struct {
	Kind   ErrorKind
	Source string
	Found  int // examples collected, for InsufficientExamples
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case InsufficientExamples:
		return fmt.Sprintf("%s: only %d qualifying posts in %s", e.Kind, e.Found, e.Source)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Source, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Source)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func invalidFormat(input, reason string) *Error {
	return &Error{Kind: InvalidFormat, Source: input, Err: errors.New(reason)}
}
