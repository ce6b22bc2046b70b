package companion

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/julianstephens/bloomlet/internal/models"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("model returned no content")

// Completer produces one assistant turn for a system prompt and a
// conversation.
type Completer interface {
	Complete(ctx context.Context, system string, messages []models.ChatMessage, maxTokens int) (string, error)
}

// ChatCompletionsService is the slice of the OpenAI client used here, so
// tests can run without calling the real API.
type ChatCompletionsService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements Completer with the chat completions API.
type OpenAI struct {
	completions ChatCompletionsService
	model       openai.ChatModel
}

var _ Completer = (*OpenAI)(nil)

func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		completions: client.Chat.Completions,
		model:       openai.ChatModel(model),
	}
}

func (o *OpenAI) Complete(ctx context.Context, system string, messages []models.ChatMessage, maxTokens int) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		params = append(params, openai.SystemMessage(system))
	}
	for _, m := range messages {
		switch m.Role {
		case models.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:  openai.F(params),
		Model:     openai.F(o.model),
		MaxTokens: openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the chat model name
func (o *OpenAI) ModelName() string {
	return string(o.model)
}
