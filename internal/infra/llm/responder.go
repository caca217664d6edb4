package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yanqian/cogniwell/internal/domain/companion"
	"github.com/yanqian/cogniwell/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// ChatGPTResponder adapts the ChatGPT client to the companion domain.
type ChatGPTResponder struct {
	client      *chatgpt.Client
	prompt      string
	model       string
	temperature float32
	recorder    *metrics.Recorder
}

// NewChatGPTResponder constructs the adapter.
func NewChatGPTResponder(client *chatgpt.Client, prompt, model string, temperature float32, recorder *metrics.Recorder) *ChatGPTResponder {
	return &ChatGPTResponder{
		client:      client,
		prompt:      prompt,
		model:       model,
		temperature: temperature,
		recorder:    recorder,
	}
}

// Respond sends the system prompt, the serialized context bundle and the user message.
func (r *ChatGPTResponder) Respond(ctx context.Context, bundle companion.ContextBundle, message string) (companion.Generated, error) {
	contextJSON, err := json.Marshal(bundle)
	if err != nil {
		return companion.Generated{}, apperrors.Wrap(apperrors.CodeLLM, "failed to encode companion context", err)
	}
	resp, err := r.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: r.prompt},
			{Role: "system", Content: "Context: " + string(contextJSON)},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		return companion.Generated{}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", err)
	}

	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	r.recorder.LLMUsage(r.model, usage)

	text := resp.Content()
	if strings.TrimSpace(text) == "" {
		return companion.Generated{Usage: usage}, apperrors.Wrap(apperrors.CodeLLM, "chatgpt returned an empty reply", nil)
	}
	return companion.Generated{Text: text, Usage: usage}, nil
}

var _ companion.Responder = (*ChatGPTResponder)(nil)
