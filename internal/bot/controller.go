package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/thinkscotty/stylebot/internal/ai"
	"github.com/thinkscotty/stylebot/internal/collector"
	"github.com/thinkscotty/stylebot/internal/config"
	"github.com/thinkscotty/stylebot/internal/content"
	"github.com/thinkscotty/stylebot/internal/models"
)

// Transport delivers messages to a chat.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) (int64, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	SendTyping(ctx context.Context, chatID int64) error
}

type ExampleCollector interface {
	Collect(ctx context.Context, input string) (collector.StyleSource, models.ExampleSet, error)
	CollectSource(ctx context.Context, src collector.StyleSource) (models.ExampleSet, error)
}

type ContentExtractor interface {
	Extract(ctx context.Context, input string) (string, error)
}

type Rewriter interface {
	Rewrite(ctx context.Context, examples models.ExampleSet, sourceText string) (string, error)
	Name() string
	Model() string
}

// RewriteLog stores finished runs. It is optional.
type RewriteLog interface {
	LogRewrite(entry models.RewriteLog) error
	GetStats() (models.Stats, error)
}

type Options struct {
	Messages config.Messages
	// FixedSource, when set, is used for every run instead of asking the
	// user for a style source.
	FixedSource string
	// MinExamples is only used to word the InsufficientExamples reply.
	MinExamples int
}

// Controller drives each chat through the restyling pipeline.
type Controller struct {
	transport Transport
	collector ExampleCollector
	extractor ContentExtractor
	rewriter  Rewriter
	log       RewriteLog

	msgs        config.Messages
	fixed       *collector.StyleSource
	minExamples int

	sessions *SessionStore
}

func New(t Transport, c ExampleCollector, x ContentExtractor, r Rewriter, log RewriteLog, opts Options) (*Controller, error) {
	ctrl := &Controller{
		transport:   t,
		collector:   c,
		extractor:   x,
		rewriter:    r,
		log:         log,
		msgs:        opts.Messages,
		minExamples: opts.MinExamples,
		sessions:    NewSessionStore(),
	}
	if opts.FixedSource != "" {
		src, err := collector.ParseStyleSource(opts.FixedSource)
		if err != nil {
			return nil, fmt.Errorf("style.source: %w", err)
		}
		ctrl.fixed = &src
	}
	return ctrl, nil
}

// Sessions exposes the session store, mainly for inspection in tests.
func (c *Controller) Sessions() *SessionStore { return c.sessions }

// Handle processes one inbound message. It blocks until any pipeline work
// the message started has finished.
func (c *Controller) Handle(ctx context.Context, chatID, messageID int64, text string) {
	first, _ := splitCommand(text)
	if cmd := normalizeSlashCommand(first); cmd != "" {
		c.handleCommand(ctx, chatID, cmd)
		return
	}
	c.handleText(ctx, chatID, text)
}

func (c *Controller) handleCommand(ctx context.Context, chatID int64, cmd string) {
	slog.Debug("Command received", "chat_id", chatID, "command", cmd)
	switch cmd {
	case cmdStart:
		c.sessions.Reset(chatID)
		c.send(ctx, chatID, c.msgs.Greeting)
	case cmdHelp:
		c.send(ctx, chatID, c.msgs.Help)
	case cmdCancel, cmdReset:
		c.sessions.Reset(chatID)
		c.send(ctx, chatID, c.msgs.Cancelled)
	case cmdRestyle, cmdRewrite:
		c.startRun(ctx, chatID)
	case cmdStats:
		c.sendStats(ctx, chatID)
	default:
		slog.Debug("Ignoring unknown command", "chat_id", chatID, "command", cmd)
	}
}

// startRun begins a run from any state, unless work is still in flight.
func (c *Controller) startRun(ctx context.Context, chatID int64) {
	sess, started := c.sessions.Update(chatID, func(s *Session) bool {
		if s.Busy {
			return false
		}
		*s = Session{State: AwaitingStyleSource, Version: s.Version + 1}
		if c.fixed != nil {
			s.Busy = true
		}
		return true
	})
	if !started {
		c.send(ctx, chatID, c.msgs.Busy)
		return
	}

	if c.fixed == nil {
		c.send(ctx, chatID, c.msgs.AskStyleSource)
		return
	}

	src := *c.fixed
	c.send(ctx, chatID, c.msgs.CollectingExamples)
	c.typing(ctx, chatID)
	set, err := c.collector.CollectSource(ctx, src)
	c.finishCollection(ctx, chatID, sess.Version, src, set, err)
}

// handleText routes free text to the step the session is waiting for.
// Anything else, including text arriving while work is in flight, is
// dropped.
func (c *Controller) handleText(ctx context.Context, chatID int64, text string) {
	sess, accepted := c.sessions.Update(chatID, func(s *Session) bool {
		if s.Busy {
			return false
		}
		switch s.State {
		case AwaitingStyleSource, AwaitingContentSource:
			s.Busy = true
			return true
		}
		return false
	})
	if !accepted {
		slog.Debug("Ignoring message", "chat_id", chatID, "state", sess.State, "busy", sess.Busy)
		return
	}

	switch sess.State {
	case AwaitingStyleSource:
		c.send(ctx, chatID, c.msgs.CollectingExamples)
		c.typing(ctx, chatID)
		src, set, err := c.collector.Collect(ctx, text)
		c.finishCollection(ctx, chatID, sess.Version, src, set, err)
	case AwaitingContentSource:
		c.restyle(ctx, chatID, sess, text)
	}
}

func (c *Controller) finishCollection(ctx context.Context, chatID int64, version uint64, src collector.StyleSource, set models.ExampleSet, err error) {
	_, applied := c.sessions.Update(chatID, func(s *Session) bool {
		if s.Version != version {
			return false
		}
		if err != nil {
			*s = Session{Version: s.Version}
			return true
		}
		s.Busy = false
		s.State = AwaitingContentSource
		s.Source = src
		s.Examples = set
		return true
	})
	if !applied {
		slog.Info("Discarding collection result for reset session", "chat_id", chatID)
		return
	}
	if err != nil {
		slog.Warn("Style source rejected", "chat_id", chatID, "error", err)
		c.send(ctx, chatID, c.collectionMessage(err))
		return
	}
	c.send(ctx, chatID, fmt.Sprintf(c.msgs.AskContentSource, len(set), src.String()))
}

// restyle runs extraction and the rewrite for a session holding examples.
// sess is the snapshot taken when the content message was accepted; its
// examples are passed to the rewriter directly.
func (c *Controller) restyle(ctx context.Context, chatID int64, sess Session, input string) {
	start := time.Now()
	entry := models.RewriteLog{
		ChatID:       chatID,
		StyleSource:  "@" + sess.Source.Channel,
		Keyword:      sess.Source.Keyword,
		ExampleCount: len(sess.Examples),
		Provider:     c.rewriter.Name(),
		Model:        c.rewriter.Model(),
	}

	text, err := c.extractor.Extract(ctx, input)
	if err != nil {
		slog.Warn("Content source rejected", "chat_id", chatID, "error", err)
		if c.abort(chatID, sess.Version) {
			c.send(ctx, chatID, c.extractionMessage(err))
		}
		c.record(entry, start, "", err)
		return
	}
	entry.SourceChars = utf8.RuneCountInString(text)

	_, current := c.sessions.Update(chatID, func(s *Session) bool {
		if s.Version != sess.Version {
			return false
		}
		s.State = Finalizing
		return true
	})
	if !current {
		slog.Info("Discarding extraction result for reset session", "chat_id", chatID)
		return
	}

	c.send(ctx, chatID, c.msgs.ExtractedEcho+text)
	noticeID := c.send(ctx, chatID, c.msgs.Generating)
	c.typing(ctx, chatID)

	post, err := c.rewriter.Rewrite(ctx, sess.Examples, text)

	if noticeID != 0 {
		if derr := c.transport.DeleteMessage(ctx, chatID, noticeID); derr != nil {
			slog.Debug("Failed to delete generating notice", "chat_id", chatID, "error", derr)
		}
	}

	if err != nil {
		if c.abort(chatID, sess.Version) {
			c.send(ctx, chatID, c.msgs.RewriteFailed)
		}
		c.record(entry, start, "", err)
		return
	}

	if !c.abort(chatID, sess.Version) {
		slog.Info("Discarding rewrite result for reset session", "chat_id", chatID)
		c.record(entry, start, post, nil)
		return
	}
	c.send(ctx, chatID, post)
	c.send(ctx, chatID, c.msgs.PostReady)
	c.record(entry, start, post, nil)
}

// abort returns the session to Idle if it is still on version. It reports
// whether the session was current.
func (c *Controller) abort(chatID int64, version uint64) bool {
	_, current := c.sessions.Update(chatID, func(s *Session) bool {
		if s.Version != version {
			return false
		}
		*s = Session{Version: s.Version}
		return true
	})
	return current
}

func (c *Controller) record(entry models.RewriteLog, start time.Time, post string, err error) {
	if c.log == nil {
		return
	}
	entry.DurationMs = time.Since(start).Milliseconds()
	entry.OutputChars = utf8.RuneCountInString(post)
	entry.Status = models.RewriteOK
	if err != nil {
		entry.Status = models.RewriteFailed
		entry.ErrorKind = errorKind(err)
	}
	if lerr := c.log.LogRewrite(entry); lerr != nil {
		slog.Error("Failed to log rewrite", "chat_id", entry.ChatID, "error", lerr)
	}
}

func (c *Controller) sendStats(ctx context.Context, chatID int64) {
	if c.log == nil {
		return
	}
	stats, err := c.log.GetStats()
	if err != nil {
		slog.Error("Failed to read stats", "error", err)
		return
	}
	c.send(ctx, chatID, fmt.Sprintf(c.msgs.Stats, stats.TotalRewrites, stats.SucceededRewrites, stats.FailedRewrites))
}

func (c *Controller) collectionMessage(err error) string {
	var cerr *collector.Error
	if !errors.As(err, &cerr) {
		return c.msgs.SourceUnavailable
	}
	switch cerr.Kind {
	case collector.InvalidFormat:
		return c.msgs.InvalidFormat
	case collector.InsufficientExamples:
		return fmt.Sprintf(c.msgs.InsufficientExamples, cerr.Found, c.minExamples)
	default:
		return c.msgs.SourceUnavailable
	}
}

func (c *Controller) extractionMessage(err error) string {
	var xerr *content.Error
	if !errors.As(err, &xerr) {
		return c.msgs.ParseFailed
	}
	switch xerr.Kind {
	case content.TooShort:
		return fmt.Sprintf(c.msgs.TooShort, xerr.Limit)
	case content.TooLong:
		return fmt.Sprintf(c.msgs.TooLong, xerr.Limit)
	default:
		return c.msgs.ParseFailed
	}
}

func errorKind(err error) string {
	var xerr *content.Error
	if errors.As(err, &xerr) {
		return xerr.Kind.String()
	}
	var rerr *ai.RewriteError
	if errors.As(err, &rerr) {
		return rerr.Kind.String()
	}
	return "unknown"
}

// send delivers text and returns the sent message's ID, or 0 on failure.
func (c *Controller) send(ctx context.Context, chatID int64, text string) int64 {
	id, err := c.transport.SendText(ctx, chatID, text)
	if err != nil {
		slog.Error("Failed to send message", "chat_id", chatID, "error", err)
		return 0
	}
	return id
}

func (c *Controller) typing(ctx context.Context, chatID int64) {
	if err := c.transport.SendTyping(ctx, chatID); err != nil {
		slog.Debug("Failed to send typing action", "chat_id", chatID, "error", err)
	}
}
