package bot

import (
	"sync"

	"github.com/thinkscotty/stylebot/internal/collector"
	"github.com/thinkscotty/stylebot/internal/models"
)

type State int

const (
	Idle State = iota
	AwaitingStyleSource
	AwaitingContentSource
	Finalizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingStyleSource:
		return "awaiting_style_source"
	case AwaitingContentSource:
		return "awaiting_content_source"
	case Finalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Session is one chat's progress through a restyling run.
type Session struct {
	State    State
	Examples models.ExampleSet
	Source   collector.StyleSource

	// Busy is set while a collection, extraction or rewrite is in flight.
	Busy bool
	// Version changes on every explicit reset. Work started under an older
	// version has its result discarded.
	Version uint64
}

// SessionStore keeps sessions in memory, keyed by chat ID. Sessions are
// only changed through Update so that check-and-set is atomic.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

// Get returns a copy of the chat's session. Unknown chats are Idle.
func (s *SessionStore) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[chatID]; ok {
		return *sess
	}
	return Session{}
}

// Update runs fn on the chat's session under the store lock. fn reports
// whether it changed anything; Update returns a copy of the session after fn
// and that report.
func (s *SessionStore) Update(chatID int64, fn func(*Session) bool) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &Session{}
		s.sessions[chatID] = sess
	}
	changed := fn(sess)
	return *sess, changed
}

// Reset returns the chat to Idle, drops its examples and invalidates any
// work still in flight.
func (s *SessionStore) Reset(chatID int64) Session {
	sess, _ := s.Update(chatID, func(sess *Session) bool {
		*sess = Session{Version: sess.Version + 1}
		return true
	})
	return sess
}
