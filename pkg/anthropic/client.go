// Package anthropic adapts the official Anthropic SDK to the llm.Client boundary.
package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dronedex/directory-cli/pkg/llm"
)

const defaultModel = "claude-haiku-4-5-20251001"

// defaultMaxTokens bounds the extraction response. Directory records are
// small; 2048 tokens leaves room for long address lists.
const defaultMaxTokens = 2048

// Option configures the client.
type Option func(*client)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the response token budget.
func WithMaxTokens(n int64) Option {
	return func(c *client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

type client struct {
	sdk       sdk.Client
	model     string
	maxTokens int64
}

// NewClient creates an Anthropic-backed llm.Client.
func NewClient(apiKey string, opts ...Option) llm.Client {
	c := &client{
		sdk:       sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *client) Name() string { return "anthropic" }

// Generate sends one user message and returns the concatenated text blocks.
func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.sdk.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifySDKError(err)
	}

	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// classifySDKError converts SDK failures to typed llm.CallError values.
// API errors carry an HTTP status; transport errors fall back to the
// substring heuristic in llm.Classify.
func classifySDKError(err error) error {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		return llm.NewCallError(llm.KindForStatus(apierr.StatusCode), "anthropic: "+err.Error())
	}
	return llm.NewCallError(llm.Classify(err), "anthropic: "+err.Error())
}
