package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/sagemind/internal/domain"
)

// HandlerFunc processes one inbound message and returns the reply to send.
// An empty reply means nothing is sent.
type HandlerFunc func(ctx context.Context, id domain.ConversationID, text string) string

const (
	defaultPollTimeoutSec = 30
	initialBackoff        = 2 * time.Second
	maxBackoff            = 15 * time.Second
)

// Poller drives the long-poll update loop: fetch a batch, handle each
// message to completion, send the reply, advance the offset. Events are
// handled strictly in order, one at a time.
type Poller struct {
	client     *Client
	handle     HandlerFunc
	timeoutSec int
	logger     *slog.Logger
}

// NewPoller creates a poller. A non-positive timeout gets the default.
func NewPoller(client *Client, handle HandlerFunc, timeoutSec int, logger *slog.Logger) *Poller {
	if timeoutSec <= 0 {
		timeoutSec = defaultPollTimeoutSec
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:     client,
		handle:     handle,
		timeoutSec: timeoutSec,
		logger:     logger,
	}
}

// Run polls until the context is canceled. Poll errors back off
// exponentially up to a cap; send errors are logged and never retried.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("Telegram poller started", "poll_timeout_sec", p.timeoutSec)

	var offset int64
	backoff := initialBackoff
	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("Telegram poller stopping")
			return nil
		}

		updates, nextOffset, err := p.client.GetUpdates(ctx, offset, p.timeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("Telegram poller stopping")
				return nil
			}
			p.logger.Warn("getUpdates failed", "error", err, "backoff", backoff)
			if sleepErr := sleepOrCancel(ctx, backoff); sleepErr != nil {
				return nil
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff

		for _, upd := range updates {
			p.dispatch(ctx, upd)
		}
		offset = nextOffset
	}
}

func (p *Poller) dispatch(ctx context.Context, upd Update) {
	if upd.Message == nil || upd.Message.Chat.ID == 0 || upd.Message.Text == "" {
		return
	}
	id := domain.ConversationID(upd.Message.Chat.ID)

	text := p.handle(ctx, id, upd.Message.Text)
	if text == "" {
		return
	}
	if err := p.client.SendMessage(ctx, upd.Message.Chat.ID, text); err != nil {
		p.logger.Warn("sendMessage failed", "conversation_id", upd.Message.Chat.ID, "error", err)
	}
}

func sleepOrCancel(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
