package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClassifier classifies sentiment via a model-serving sidecar, e.g. a
// Python process hosting a pretrained DistilBERT SST-2 model behind a small
// JSON endpoint.
type HTTPClassifier struct {
	baseURL string
	httpc   *http.Client
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label string `json:"label"`
	Error string `json:"error,omitempty"`
}

// NewHTTP creates a classifier that POSTs to {addr}/classify. A nil client
// gets a sensible timeout.
func NewHTTP(addr string, httpc *http.Client) *HTTPClassifier {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClassifier{
		baseURL: strings.TrimRight(addr, "/"),
		httpc:   httpc,
	}
}

// Classify posts the (truncated) text to the sidecar and parses the label.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Label, error) {
	payload, err := json.Marshal(classifyRequest{Text: Truncate(text)})
	if err != nil {
		return "", fmt.Errorf("encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", fmt.Errorf("classifier http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode classify response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("classifier error: %s", out.Error)
	}
	return ParseLabel(out.Label)
}
