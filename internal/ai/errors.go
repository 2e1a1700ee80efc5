package ai

import "fmt"

type ErrorKind int

const (
	ProviderError ErrorKind = iota + 1
	TransportError
)

func (k ErrorKind) String() string {
	switch k {
	case ProviderError:
		return "provider_error"
	case TransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// maxErrorBody caps how much of a provider response is kept in an error.
const maxErrorBody = 2048

// RewriteError is returned for every failed rewrite. ProviderError carries
// the HTTP status and body of the rejected call; TransportError wraps the
// network failure.
type RewriteError struct {
	Kind   ErrorKind
	Stage  string // "token" or "completion"
	Status int
	Body   string
	Err    error
}

func (e *RewriteError) Error() string {
	if e.Kind == ProviderError {
		return fmt.Sprintf("%s during %s: status %d: %s", e.Kind, e.Stage, e.Status, e.Body)
	}
	return fmt.Sprintf("%s during %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *RewriteError) Unwrap() error { return e.Err }

func providerError(stage string, status int, body []byte) *RewriteError {
	b := string(body)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody] + "..."
	}
	return &RewriteError{Kind: ProviderError, Stage: stage, Status: status, Body: b}
}

func transportError(stage string, err error) *RewriteError {
	return &RewriteError{Kind: TransportError, Stage: stage, Err: err}
}
