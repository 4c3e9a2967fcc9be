package ai

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig points the adapter at any OpenAI-compatible endpoint, Groq
// included.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// OpenAIChatModel exposes go-openai as an eino chat model.
type OpenAIChatModel struct {
	client      *openai.Client
	model       string
	temperature *float32
	maxTokens   *int
}

var _ model.BaseChatModel = (*OpenAIChatModel)(nil)

// NewOpenAIChatModel constructs the adapter.
func NewOpenAIChatModel(cfg OpenAIConfig) *OpenAIChatModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	m := &OpenAIChatModel{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
	if cfg.Temperature != nil {
		val := float32(*cfg.Temperature)
		m.temperature = &val
	}
	return m
}

// Generate sends the messages as one chat completion request.
func (m *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	modelName := m.model
	options := model.GetCommonOptions(&model.Options{
		Model:       &modelName,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
	}, opts...)

	req := openai.ChatCompletionRequest{
		Messages: toOpenAIMessages(input),
	}
	if options.Model != nil {
		req.Model = *options.Model
	}
	if options.Temperature != nil {
		req.Temperature = *options.Temperature
	}
	if options.MaxTokens != nil {
		req.MaxTokens = *options.MaxTokens
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}

	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

// Stream degrades to a single-chunk stream over Generate.
func (m *OpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case schema.System:
			role = openai.ChatMessageRoleSystem
		case schema.Assistant:
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return messages
}
