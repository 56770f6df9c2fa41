// Package openai wraps the OpenAI chat-completion API behind our own
// request/response types so the pipeline never depends on SDK types
// directly.
package openai

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	sdk "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client defines the chat-completion operations used by the pipeline.
type Client interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is our own request type for CreateChatCompletion.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	Tools       []ToolDef
}

// Message represents a single conversational message.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// ToolDef declares one function-calling tool with a JSON-schema parameter
// spec.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a tool invocation returned by the model. Arguments is a JSON
// string expected to conform to the tool's parameter schema.
type ToolCall struct {
	Name      string
	Arguments string
}

// ChatResponse is our own response type from CreateChatCompletion.
type ChatResponse struct {
	ID        string
	Model     string
	Content   string
	ToolCalls []ToolCall
	Usage     TokenUsage
}

// FirstToolCall returns the first tool call with the given function name,
// or nil if the response carries none.
func (r *ChatResponse) FirstToolCall(name string) *ToolCall {
	for i := range r.ToolCalls {
		if r.ToolCalls[i].Name == name {
			return &r.ToolCalls[i]
		}
	}
	return nil
}

// TokenUsage tracks token consumption for one call.
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"gpt-4.1":      {2.00, 8.00},
	"gpt-4.1-mini": {0.40, 1.60},
	"gpt-4o":       {2.50, 10.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and model
// ID. Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return (float64(u.PromptTokens)/1e6)*pricing[0] + (float64(u.CompletionTokens)/1e6)*pricing[1]
}

// LogCost logs token usage and estimated cost with structured zap fields.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("prompt_tokens", u.PromptTokens),
		zap.Int64("completion_tokens", u.CompletionTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// sdkClient implements Client using sashabaranov/go-openai.
type sdkClient struct {
	client *sdk.Client
}

// NewClient creates a Client backed by the SDK. baseURL overrides the API
// endpoint when non-empty (for proxies and compatible servers).
func NewClient(apiKey, baseURL string) Client {
	cfg := sdk.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &sdkClient{client: sdk.NewClientWithConfig(cfg)}
}

var (
	sharedOnce   sync.Once
	sharedClient Client
)

// Shared returns the process-wide client handle, creating it on first use.
// Safe for concurrent use; there is no teardown beyond process exit.
func Shared(apiKey, baseURL string) Client {
	sharedOnce.Do(func() {
		sharedClient = NewClient(apiKey, baseURL)
	})
	return sharedClient
}

func (c *sdkClient) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	params := sdk.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toSDKMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       toSDKTools(req.Tools),
	}

	resp, err := c.client.CreateChatCompletion(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}

	return fromSDKResponse(&resp), nil
}

func toSDKMessages(msgs []Message) []sdk.ChatCompletionMessage {
	out := make([]sdk.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = sdk.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}

func toSDKTools(tools []ToolDef) []sdk.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]sdk.Tool, len(tools))
	for i, t := range tools {
		out[i] = sdk.Tool{
			Type: sdk.ToolTypeFunction,
			Function: &sdk.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func fromSDKResponse(resp *sdk.ChatCompletionResponse) *ChatResponse {
	out := &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: TokenUsage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
		},
	}
	if len(resp.Choices) > 0 {
		msg := resp.Choices[0].Message
		out.Content = msg.Content
		for _, tc := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	return out
}
