// Package llm extracts transaction candidates from free text with Gemini.
// It is the fallback path: the rule-based extractor runs first and the model
// is only consulted when the rules come up empty.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/rbarros/finassist/internal/extract"
)

// ErrCoolingDown is returned while the client refuses to call the model
// after a quota rejection.
var ErrCoolingDown = errors.New("llm: cooling down after quota error")

// Config holds the client settings.
type Config struct {
	APIKey string
	Model  string

	// Cooldown is how long to back off after a quota error.
	Cooldown time.Duration
}

// Client wraps the Gemini API with a shared quota cooldown: after a 429 every
// caller skips the model until the cooldown expires, instead of piling on.
type Client struct {
	genai *genai.Client
	model string

	mu            sync.Mutex
	cooldown      time.Duration
	cooldownUntil time.Time

	now func() time.Time
}

// NewClient creates a Gemini-backed extraction client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &Client{
		genai:    gc,
		model:    model,
		cooldown: cooldown,
		now:      time.Now,
	}, nil
}

// Available reports whether the client is willing to call the model now.
func (c *Client) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().After(c.cooldownUntil)
}

func (c *Client) markCooldown() {
	c.mu.Lock()
	c.cooldownUntil = c.now().Add(c.cooldown)
	c.mu.Unlock()
}

// Extract asks the model for transaction candidates in the given text.
// The result is already deduplicated and post-processed.
func (c *Client) Extract(ctx context.Context, text string) (extract.SourceBatch, error) {
	if !c.Available() {
		return nil, ErrCoolingDown
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(text)},
			},
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		if isQuotaError(err) {
			c.markCooldown()
			return nil, fmt.Errorf("%w: %v", ErrCoolingDown, err)
		}
		return nil, fmt.Errorf("llm: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("llm: empty response from model")
	}

	batch, err := decodeRecords(cleanModelJSON(rawText))
	if err != nil {
		return nil, fmt.Errorf("llm: %w\nraw response: %s", err, rawText)
	}
	return batch, nil
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
