package telegram

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/sagemind/internal/api"
	"github.com/ashureev/sagemind/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxWebhookBodySize = 1 << 20 // 1MB

// Webhook handles Bot API webhook deliveries as an alternative to long
// polling. Each request carries a single update; the reply goes out through
// the regular sendMessage call, not the webhook response.
type Webhook struct {
	client  *Client
	handle  HandlerFunc
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewWebhook creates a webhook handler. A nil limiter gets a default of 20
// messages per minute per conversation.
func NewWebhook(client *Client, handle HandlerFunc, limiter *RateLimiter, logger *slog.Logger) *Webhook {
	if limiter == nil {
		limiter = NewRateLimiter(20, time.Minute)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{
		client:  client,
		handle:  handle,
		limiter: limiter,
		logger:  logger,
	}
}

// RegisterRoutes mounts the webhook endpoint.
func (h *Webhook) RegisterRoutes(r chi.Router) {
	r.Post("/telegram/webhook", h.ServeHTTP)
}

// ServeHTTP decodes one update and runs it through the handler. It answers
// 200 for every well-formed delivery so the Bot API does not redeliver
// updates whose handling failed on our side.
func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var upd Update
	body := http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
	if err := json.NewDecoder(body).Decode(&upd); err != nil {
		h.logger.Warn("webhook decode failed", "error", err)
		api.Error(w, http.StatusBadRequest, "invalid update payload")
		return
	}

	if upd.Message == nil || upd.Message.Chat.ID == 0 || upd.Message.Text == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := upd.Message.Chat.ID
	if !h.limiter.Allow(chatID) {
		h.logger.Warn("webhook message rate limited", "conversation_id", chatID)
		w.WriteHeader(http.StatusOK)
		return
	}

	text := h.handle(r.Context(), domain.ConversationID(chatID), upd.Message.Text)
	if text != "" {
		if err := h.client.SendMessage(r.Context(), chatID, text); err != nil {
			h.logger.Warn("sendMessage failed", "conversation_id", chatID, "error", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}
