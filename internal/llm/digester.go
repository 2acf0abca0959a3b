package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/sentidash/internal/logger"
	"github.com/ppiankov/sentidash/internal/model"
)

// Digest is a generated feedback digest for one model
type Digest struct {
	Subject     string    `json:"subject"`
	Enabled     bool      `json:"enabled"`
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model,omitempty"`
	Text        string    `json:"text,omitempty"`
	Entries     int       `json:"entries"`
	TokensUsed  int       `json:"tokens_used,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Digester turns a model's feedback rows into a Digest
type Digester struct {
	provider Provider
	config   Config
}

// NewDigester creates a digester for the configured provider. A disabled
// configuration yields a digester whose IsEnabled reports false.
func NewDigester(config Config) (*Digester, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Digester{provider: provider, config: config}, nil
}

// NewDigesterWithProvider wraps an existing provider
func NewDigesterWithProvider(provider Provider, config Config) *Digester {
	return &Digester{provider: provider, config: config}
}

func (d *Digester) IsEnabled() bool {
	return d != nil && d.provider != nil
}

func (d *Digester) ProviderName() string {
	if !d.IsEnabled() {
		return ""
	}
	return d.provider.Name()
}

// Digest summarizes records, which are expected longest feedback first.
// An unreachable provider produces a disabled Digest with a warning rather
// than an error.
func (d *Digester) Digest(ctx context.Context, subject string, records []model.Record) (*Digest, error) {
	if !d.IsEnabled() {
		return nil, ErrDisabled
	}
	log := logger.FromContext(ctx).WithValues("provider", d.provider.Name(), "subject", subject)

	limit := d.config.MaxEntries
	if limit <= 0 {
		limit = DefaultConfig().MaxEntries
	}
	if len(records) > limit {
		records = records[:limit]
	}

	out := &Digest{
		Subject:     subject,
		Provider:    d.provider.Name(),
		Entries:     len(records),
		GeneratedAt: time.Now().UTC(),
	}

	if !d.provider.IsAvailable(ctx) {
		out.Warnings = append(out.Warnings, fmt.Sprintf("LLM provider %s is not available", d.provider.Name()))
		return out, nil
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{
			Date:     r.FormattedDate(),
			Feature:  r.Feature,
			Fact:     string(r.SentimentFact()),
			Summary:  r.Summary,
			Feedback: r.Feedback,
		})
	}

	resp, err := d.provider.Digest(ctx, DigestRequest{
		Subject:   subject,
		Entries:   entries,
		Model:     d.config.Model,
		MaxTokens: d.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate digest: %w", err)
	}
	log.V(1).Info("digest generated", "tokens", resp.TokensUsed)

	out.Enabled = true
	out.Model = resp.Model
	out.Text = resp.Digest
	out.TokensUsed = resp.TokensUsed
	if len(records) == 0 {
		out.Warnings = append(out.Warnings, "no feedback rows for this model")
	}
	return out, nil
}

// RenderMarkdown renders a digest as a standalone Markdown document
func RenderMarkdown(d *Digest) string {
	if d == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Feedback digest: %s\n\n", d.Subject)
	if !d.Enabled {
		b.WriteString("_Digest unavailable._\n")
	} else {
		b.WriteString(d.Text)
		b.WriteString("\n")
	}
	for _, w := range d.Warnings {
		fmt.Fprintf(&b, "\n> Warning: %s\n", w)
	}
	fmt.Fprintf(&b, "\n---\n\nGenerated by %s", d.Provider)
	if d.Model != "" {
		fmt.Fprintf(&b, " (%s)", d.Model)
	}
	fmt.Fprintf(&b, " from %d entries at %s.\n", d.Entries, d.GeneratedAt.Format(time.RFC3339))
	return b.String()
}
