// Package bot routes inbound messages to flows, command handlers, and the
// sentiment chat path.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/sagemind/internal/classify"
	"github.com/ashureev/sagemind/internal/domain"
	"github.com/ashureev/sagemind/internal/reply"
	"github.com/ashureev/sagemind/internal/store"
)

// DefaultFlowTimeout is how long a prompted mood/journal flow waits for its
// answer before the next message is routed normally again.
const DefaultFlowTimeout = 10 * time.Minute

// Dispatcher routes one inbound message at a time for a conversation. All
// session state lives in the injected Repository; the dispatcher itself is
// stateless and safe for concurrent use across conversations.
type Dispatcher struct {
	repo        store.Repository
	classifier  classify.Classifier
	selector    *reply.Selector
	flowTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewDispatcher wires a dispatcher. A zero flowTimeout gets the default;
// a nil logger gets slog.Default().
func NewDispatcher(repo store.Repository, classifier classify.Classifier, selector *reply.Selector, flowTimeout time.Duration, logger *slog.Logger) *Dispatcher {
	if flowTimeout <= 0 {
		flowTimeout = DefaultFlowTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		repo:        repo,
		classifier:  classifier,
		selector:    selector,
		flowTimeout: flowTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Handle processes one inbound message and returns the user-facing reply.
// Failures never surface to the user as errors; they are logged and answered
// in the bot's supportive register.
func (d *Dispatcher) Handle(ctx context.Context, id domain.ConversationID, text string) string {
	state, enteredAt, err := d.repo.FlowState(ctx, id)
	if err != nil {
		d.logger.Error("flow state lookup failed", "conversation_id", int64(id), "error", err)
		state = domain.FlowIdle
	}

	// An abandoned flow unblocks lazily: past the timeout the message is
	// routed as if the flow had never started.
	if state != domain.FlowIdle && d.now().Sub(enteredAt) > d.flowTimeout {
		d.logger.Info("flow timed out", "conversation_id", int64(id), "state", state.String())
		d.setFlowState(ctx, id, domain.FlowIdle)
		state = domain.FlowIdle
	}

	// An awaiting flow captures the next message verbatim, commands and
	// empty strings included.
	switch state {
	case domain.FlowAwaitingMood:
		return d.captureMood(ctx, id, text)
	case domain.FlowAwaitingJournal:
		return d.captureJournal(ctx, id, text)
	}

	switch token := commandToken(text); token {
	case cmdStart:
		return startMessage
	case cmdHelp:
		return helpMessage
	case cmdMood:
		d.setFlowState(ctx, id, transition(state, token))
		return moodPrompt
	case cmdJournal:
		d.setFlowState(ctx, id, transition(state, token))
		return journalPrompt
	case cmdAffirmation:
		return d.selector.Affirmation()
	case cmdEnd:
		return d.endSession(ctx, id)
	case "":
		return d.chat(ctx, id, text)
	default:
		return unknownCommandReply
	}
}

// transition is the pure flow transition function: which state a
// conversation moves to when it handles input in state st.
func transition(st domain.FlowState, cmd string) domain.FlowState {
	if st != domain.FlowIdle {
		// Capture always terminates the flow.
		return domain.FlowIdle
	}
	switch cmd {
	case cmdMood:
		return domain.FlowAwaitingMood
	case cmdJournal:
		return domain.FlowAwaitingJournal
	default:
		return domain.FlowIdle
	}
}

// commandToken returns the first whitespace-delimited token when it is a
// command, and "" for free text.
func commandToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	return fields[0]
}

func (d *Dispatcher) captureMood(ctx context.Context, id domain.ConversationID, text string) string {
	entry := domain.MoodEntry{Text: text, Timestamp: domain.Timestamp(d.now())}
	if err := d.repo.SetMood(ctx, id, entry); err != nil {
		d.logger.Error("store mood failed", "conversation_id", int64(id), "error", err)
	}
	d.setFlowState(ctx, id, transition(domain.FlowAwaitingMood, ""))
	return moodAck(text)
}

func (d *Dispatcher) captureJournal(ctx context.Context, id domain.ConversationID, text string) string {
	entry := domain.JournalEntry{Text: text, Timestamp: domain.Timestamp(d.now())}
	if err := d.repo.AppendJournal(ctx, id, entry); err != nil {
		d.logger.Error("store journal entry failed", "conversation_id", int64(id), "error", err)
	}
	d.setFlowState(ctx, id, transition(domain.FlowAwaitingJournal, ""))
	return journalAck
}

// chat is the free-text path: classify, then pick a reply for the label.
// Any classifier failure becomes the one fixed fallback line.
func (d *Dispatcher) chat(ctx context.Context, id domain.ConversationID, text string) string {
	if err := d.repo.SetChatActive(ctx, id); err != nil {
		d.logger.Error("set chat active failed", "conversation_id", int64(id), "error", err)
	}

	label, err := d.classifier.Classify(ctx, text)
	if err != nil {
		d.logger.Error("sentiment classification failed", "conversation_id", int64(id), "error", err)
		return reply.Fallback
	}
	return d.selector.ForLabel(label)
}

func (d *Dispatcher) endSession(ctx context.Context, id domain.ConversationID) string {
	if err := d.repo.ClearChatActive(ctx, id); err != nil {
		d.logger.Error("clear chat active failed", "conversation_id", int64(id), "error", err)
	}
	return endAck
}

func (d *Dispatcher) setFlowState(ctx context.Context, id domain.ConversationID, state domain.FlowState) {
	if err := d.repo.SetFlowState(ctx, id, state, d.now()); err != nil {
		d.logger.Error("set flow state failed", "conversation_id", int64(id), "state", state.String(), "error", err)
	}
}
