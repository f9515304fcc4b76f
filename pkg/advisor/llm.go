package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/harrisonrobin/eisen/pkg/logger"
)

const systemPrompt = "You are an assistant that analyzes tasks for an Eisenhower matrix."

// promptTemplate asks for the fields ParseResponse consumes and nothing else.
const promptTemplate = `Classify the task below.

**Fields:**
- importance: how much completing it matters for my long-term goals (high|medium|low)
- urgency: how soon it needs attention (high|medium|low)
- energy: how much focus and effort it takes (high|medium|low)

**Output Format:**
Return ONLY a JSON object such as {"importance": "high", "urgency": "low", "energy": "medium"}.
No additional text.

**Task:** %s`

const maxTokens = 150

// LLMAdvisor asks a language model for suggestions.
type LLMAdvisor struct {
	model llms.Model
}

// NewLLMAdvisor wraps an existing model.
func NewLLMAdvisor(model llms.Model) *LLMAdvisor {
	return &LLMAdvisor{model: model}
}

// NewOpenAIAdvisor creates an advisor backed by an OpenAI chat model.
func NewOpenAIAdvisor(modelName, apiKey string) (*LLMAdvisor, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	model, err := openai.New(openai.WithModel(modelName), openai.WithToken(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewLLMAdvisor(model), nil
}

// Analyze asks the model about taskName. A failed call or an unreadable
// answer is reported as ErrUnusableResponse.
func (a *LLMAdvisor) Analyze(ctx context.Context, taskName string) (Suggestion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(promptTemplate, taskName)),
	}
	resp, err := a.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(0),
	)
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: %w", ErrUnusableResponse, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return Suggestion{}, fmt.Errorf("%w: no choices returned", ErrUnusableResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	s, err := ParseResponse(text)
	if err != nil {
		logger.FromContext(ctx).Debug("Could not read advisory answer", "task", taskName, "answer", text)
		return Suggestion{}, err
	}
	return s, nil
}
