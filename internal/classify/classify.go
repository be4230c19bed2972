// Package classify defines the sentiment classification contract and its
// provider implementations.
package classify

import (
	"context"
	"fmt"
	"strings"
)

// Label is a binary, forced-choice sentiment label. Providers must return
// one of the two values for any input; there is no neutral or unknown label.
type Label string

const (
	Negative Label = "negative"
	Positive Label = "positive"
)

// maxInputRunes bounds the text sent to a provider. Classifiers in the
// DistilBERT class cap out around 512 tokens; this leaves headroom for any
// reasonable tokenizer while keeping requests small.
const maxInputRunes = 2000

// Classifier classifies free text into a binary sentiment label.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// Truncate bounds text to the provider input limit, cutting on a rune
// boundary. Empty input passes through unchanged.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxInputRunes {
		return text
	}
	return string(runes[:maxInputRunes])
}

// ParseLabel maps a provider's raw label string onto a Label. Matching is
// case-insensitive and ignores surrounding whitespace; anything else is an
// error so callers can fall back.
func ParseLabel(raw string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(Negative):
		return Negative, nil
	case string(Positive):
		return Positive, nil
	default:
		return "", fmt.Errorf("unrecognized sentiment label %q", raw)
	}
}
