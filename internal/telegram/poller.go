package telegram

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"
)

// Handler processes one inbound text message.
type Handler func(ctx context.Context, chatID, messageID int64, text string)

// Poller long-polls getUpdates and runs each message in its own goroutine,
// bounding how many run at once.
type Poller struct {
	api         *API
	pollTimeout time.Duration
	limit       int64
	sem         *semaphore.Weighted
}

func NewPoller(api *API, pollTimeout time.Duration, maxConcurrency int) *Poller {
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Poller{
		api:         api,
		pollTimeout: pollTimeout,
		limit:       int64(maxConcurrency),
		sem:         semaphore.NewWeighted(int64(maxConcurrency)),
	}
}

func newPollBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = 0 // keep polling forever
	b.RandomizationFactor = 0.5
	b.Reset()
	return b
}

// Run polls until ctx is cancelled. Poll failures back off exponentially.
func (p *Poller) Run(ctx context.Context, handle Handler) {
	var offset int64
	bo := newPollBackoff()

	for ctx.Err() == nil {
		updates, next, err := p.api.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			wait := bo.NextBackOff()
			slog.Warn("Telegram getUpdates failed", "error", err, "retry_in", wait)
			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
			continue
		}
		bo.Reset()
		offset = next

		for _, u := range updates {
			msg := u.Message
			if msg == nil || msg.Chat == nil {
				continue
			}
			text := strings.TrimSpace(msg.Text)
			if text == "" {
				continue
			}
			if err := p.sem.Acquire(ctx, 1); err != nil {
				break
			}
			go p.dispatch(ctx, handle, msg.Chat.ID, msg.MessageID, text)
		}
	}

	// Wait for in-flight handlers before returning.
	_ = p.sem.Acquire(context.Background(), p.limit)
	p.sem.Release(p.limit)
	slog.Info("Telegram poller stopped")
}

func (p *Poller) dispatch(ctx context.Context, handle Handler, chatID, messageID int64, text string) {
	defer p.sem.Release(1)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while handling message", "chat_id", chatID, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	handle(ctx, chatID, messageID, text)
}
