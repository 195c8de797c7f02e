// Package copywriter produces short marketing copy for stock items and
// a plain-language read of the inventory numbers. It wraps the
// Anthropic messages API; without an API key it degrades to canned
// text so the rest of the app never depends on network access.
package copywriter

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when the caller does not pick one.
const DefaultModel = "claude-sonnet-4-20250514"

const maxTokens = 256

// Writer generates copy. The zero value is not usable; construct with
// New.
type Writer struct {
	client    *anthropic.Client
	model     string
	logger    *log.Logger
	maxTokens int64
}

// New creates a Writer. An empty apiKey yields a Writer that only
// returns placeholder text. If logger is nil, a default logger writing
// to stderr is used.
func New(apiKey, model string, logger *log.Logger) *Writer {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[copywriter] ", log.LstdFlags)
	}
	w := &Writer{model: model, logger: logger, maxTokens: maxTokens}
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		w.client = &client
	}
	return w
}

// Configured reports whether the Writer has an API key and will make
// real calls.
func (w *Writer) Configured() bool {
	return w.client != nil
}

// Describe returns a one-sentence product description for a stock
// item. On any failure it falls back to placeholder text and logs the
// reason; callers always get usable copy.
func (w *Writer) Describe(ctx context.Context, name, material, size string) string {
	fallback := fmt.Sprintf("Premium %s tile (%s), perfect for modern interiors.", strings.ToLower(material), size)
	if w.client == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"Write a single enticing sentence of marketing copy for a tile product. "+
			"Name: %s. Material: %s. Size: %s. "+
			"Output only the sentence, no quotes, no preamble.",
		name, material, size)

	text, err := w.complete(ctx, prompt)
	if err != nil {
		w.logger.Printf("describe %s: %v", name, err)
		return fallback
	}
	return text
}

// Insight returns a short prose summary of the inventory numbers. Like
// Describe, it never fails; errors degrade to a plain recital of the
// figures.
func (w *Writer) Insight(ctx context.Context, totalValue float64, itemCount int, topCategory string) string {
	fallback := fmt.Sprintf("Inventory holds %d items worth $%.2f in total.", itemCount, totalValue)
	if topCategory != "" {
		fallback += fmt.Sprintf(" %s is the largest category.", topCategory)
	}
	if w.client == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"You are a retail analyst for a tile shop. In two sentences, summarize this "+
			"inventory for the owner: %d distinct items, total retail value $%.2f, "+
			"largest category %q. Be concrete and mention one actionable observation. "+
			"Output only the two sentences.",
		itemCount, totalValue, topCategory)

	text, err := w.complete(ctx, prompt)
	if err != nil {
		w.logger.Printf("insight: %v", err)
		return fallback
	}
	return text
}

func (w *Writer) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := w.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(w.model),
		MaxTokens: w.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages api: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}
	text := strings.TrimSpace(msg.Content[0].Text)
	if text == "" {
		return "", fmt.Errorf("blank response")
	}
	return text, nil
}
