package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTruncateBounds(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", maxInputRunes+500)
	got := Truncate(long)
	if n := len([]rune(got)); n != maxInputRunes {
		t.Errorf("expected %d runes after truncation, got %d", maxInputRunes, n)
	}

	short := "feeling fine"
	if Truncate(short) != short {
		t.Errorf("short input must pass through unchanged")
	}
	if Truncate("") != "" {
		t.Errorf("empty input must pass through unchanged")
	}
}

func TestParseLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Label
	}{
		{"negative", Negative},
		{"positive", Positive},
		{" Positive ", Positive},
		{"NEGATIVE", Negative},
	}
	for _, tc := range cases {
		got, err := ParseLabel(tc.raw)
		if err != nil {
			t.Errorf("ParseLabel(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLabel(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}

	for _, raw := range []string{"", "neutral", "2", "pos"} {
		if _, err := ParseLabel(raw); err == nil {
			t.Errorf("ParseLabel(%q): expected error", raw)
		}
	}
}

func TestSentimentSchemaIsStrict(t *testing.T) {
	t.Parallel()

	if sentimentSchema["additionalProperties"] != false {
		t.Errorf("schema must forbid additional properties")
	}
	required, ok := sentimentSchema["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "label" {
		t.Errorf("schema must require exactly the label field, got %v", sentimentSchema["required"])
	}

	properties, ok := sentimentSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("schema missing properties: %v", sentimentSchema)
	}
	label, ok := properties["label"].(map[string]interface{})
	if !ok {
		t.Fatalf("schema missing label property")
	}
	enum, ok := label["enum"].([]interface{})
	if !ok || len(enum) != 2 {
		t.Fatalf("label enum must list both sentiment values, got %v", label["enum"])
	}
}

func TestHTTPClassifier(t *testing.T) {
	t.Parallel()

	var gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotText = req.Text
		json.NewEncoder(w).Encode(classifyResponse{Label: "positive"})
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, srv.Client())
	label, err := c.Classify(context.Background(), "today was great")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if label != Positive {
		t.Errorf("expected positive, got %q", label)
	}
	if gotText != "today was great" {
		t.Errorf("sidecar received %q", gotText)
	}
}

func TestHTTPClassifierErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, srv.Client())
	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from failing sidecar")
	}

	// A well-formed response with a junk label is still an error.
	junk := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(classifyResponse{Label: "neutral"})
	}))
	defer junk.Close()

	c = NewHTTP(junk.URL, junk.Client())
	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for unrecognized label")
	}
}
