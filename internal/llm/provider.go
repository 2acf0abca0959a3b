package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/sentidash/internal/model"
)

// ErrDisabled is returned when no provider is configured
var ErrDisabled = errors.New("llm digest disabled: no provider configured")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Digest condenses a model's feedback into a short narrative
	Digest(ctx context.Context, req DigestRequest) (*DigestResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Entry is one feedback row handed to the provider
type Entry struct {
	Date     string
	Feature  string
	Fact     string
	Summary  string
	Feedback string
}

// DigestRequest contains the input for a feedback digest
type DigestRequest struct {
	// Subject is the product model the feedback is about
	Subject string

	// Entries is the feedback, longest first
	Entries []Entry

	// Prompt overrides the default prompt when set
	Prompt string

	// Model is the provider-specific model name
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// DigestResponse contains the provider output
type DigestResponse struct {
	Digest     string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama" or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	APIKey string

	// BaseURL for OpenAI-compatible endpoints such as Ollama
	BaseURL string

	Timeout int // seconds

	MaxTokens int

	// MaxEntries caps the feedback rows placed in the prompt
	MaxEntries int

	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:   "", // Disabled by default
		Timeout:    30,
		MaxTokens:  600,
		MaxEntries: 20,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		MaxEntries: c.MaxEntries,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
	}
}

// maxFeedbackChars trims very long feedback so one row cannot crowd out the rest
const maxFeedbackChars = 600

// BuildPrompt constructs the default digest prompt
func BuildPrompt(req DigestRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are summarizing customer feedback about the %s.

RULES:
1. Only use the feedback listed below. Do not add outside knowledge.
2. Group observations by feature and say whether sentiment is positive or negative.
3. If the feedback is thin or contradictory, say so.
4. Do not quote personal details.

Feedback (%d entries, longest first):
`, req.Subject, len(req.Entries))

	if len(req.Entries) == 0 {
		b.WriteString("(No feedback available)\n")
	}
	for i, e := range req.Entries {
		text := e.Feedback
		if text == "" {
			text = e.Summary
		}
		if len(text) > maxFeedbackChars {
			text = text[:maxFeedbackChars] + "..."
		}
		fmt.Fprintf(&b, "%d. [%s] %s / %s: %s\n", i+1, e.Date, e.Feature, e.Fact, text)
	}

	b.WriteString("\nProvide a 4-6 sentence digest, then up to three bullet points of the most actionable issues.")
	return b.String()
}
