// Package telegram implements a minimal Bot API client plus the long-poll
// and webhook update runners that feed the dispatcher.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// maxMessageRunes is the Bot API hard limit per sendMessage call; longer
// replies are split on line boundaries.
const maxMessageRunes = 4096

// Update is one inbound event from the Bot API.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is the text message inside an update.
type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

type getUpdatesResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description,omitempty"`
	Result      []Update `json:"result"`
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Client is a Bot API client for the two calls the bot needs.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a Bot API client. Empty baseURL selects the production
// endpoint; a nil http.Client gets one with a long-poll-friendly timeout and
// a nil logger gets slog.Default().
func NewClient(token, baseURL string, httpc *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 45 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		logger:  logger,
	}, nil
}

// GetUpdates long-polls for updates past offset and returns them together
// with the next offset to poll from.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, int64, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates", c.baseURL, c.token)
	values := url.Values{}
	values.Set("timeout", strconv.Itoa(timeoutSec))
	if offset > 0 {
		values.Set("offset", strconv.FormatInt(offset, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, offset, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, offset, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return nil, offset, fmt.Errorf("telegram getUpdates http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, offset, err
	}
	if !payload.OK {
		if strings.TrimSpace(payload.Description) == "" {
			return nil, offset, fmt.Errorf("telegram getUpdates failed")
		}
		return nil, offset, fmt.Errorf("telegram getUpdates failed: %s", payload.Description)
	}

	nextOffset := offset
	for _, upd := range payload.Result {
		if upd.UpdateID >= nextOffset {
			nextOffset = upd.UpdateID + 1
		}
	}
	return payload.Result, nextOffset, nil
}

// SendMessage delivers text to a chat, splitting replies over the Bot API
// length limit into several messages.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	chunks := splitMessage(text, maxMessageRunes)
	if len(chunks) > 1 {
		c.logger.Debug("splitting long reply", "chat_id", chatID, "chunks", len(chunks))
	}
	for _, chunk := range chunks {
		if err := c.sendChunk(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendChunk(ctx context.Context, chatID int64, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	payload, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return fmt.Errorf("telegram sendMessage http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var res sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return err
	}
	if !res.OK {
		if strings.TrimSpace(res.Description) == "" {
			return fmt.Errorf("telegram sendMessage failed")
		}
		return fmt.Errorf("telegram sendMessage failed: %s", res.Description)
	}
	return nil
}

// splitMessage cuts text into chunks of at most maxRunes, preferring to
// break on a newline in the second half of a chunk.
func splitMessage(text string, maxRunes int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return []string{text}
	}

	var out []string
	for start := 0; start < len(runes); {
		end := start + maxRunes
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		split := end
		for i := end; i > start+(maxRunes/2); i-- {
			if runes[i-1] == '\n' {
				split = i
				break
			}
		}
		out = append(out, string(runes[start:split]))
		start = split
	}
	return out
}
