package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/psychai/companion/internal/config"
)

// SystemInstruction is sent ahead of every patient message.
const SystemInstruction = "You are a compassionate mentor. Listen deeply and support the user."

// FallbackReply replaces the assistant turn whenever the completion fails.
const FallbackReply = "I'm listening, but I'm having a slight connection trouble. Please continue."

const defaultTimeout = 20 * time.Second

var (
	ErrUnavailable = errors.New("completion service not configured")
	ErrEmptyReply  = errors.New("completion returned empty content")
)

// Outcome tells a real reply apart from the fallback.
type Outcome string

const (
	OutcomeReplied  Outcome = "replied"
	OutcomeFallback Outcome = "fallback"
)

// Reply is the assistant turn produced for one patient message. Err is set
// only when Outcome is OutcomeFallback.
type Reply struct {
	Content string
	Outcome Outcome
	Err     error
}

// UsedFallback reports whether Content is the fixed fallback text.
func (r Reply) UsedFallback() bool {
	return r.Outcome == OutcomeFallback
}

// Options tunes the completion service.
type Options struct {
	SystemInstruction string
	Fallback          string
	Timeout           time.Duration
}

// Service requests stateless completions: the system instruction plus the
// latest patient message, nothing else.
type Service struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	system   string
	fallback string
	timeout  time.Duration
}

// NewService compiles the completion chain around chatModel. A nil chatModel
// yields a service that always answers with the fallback.
func NewService(ctx context.Context, chatModel model.BaseChatModel, opts Options) (*Service, error) {
	svc := &Service{
		system:   opts.SystemInstruction,
		fallback: opts.Fallback,
		timeout:  opts.Timeout,
	}
	if svc.system == "" {
		svc.system = SystemInstruction
	}
	if svc.fallback == "" {
		svc.fallback = FallbackReply
	}
	if svc.timeout <= 0 {
		svc.timeout = defaultTimeout
	}

	if chatModel == nil {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	svc.chain = runnable
	return svc, nil
}

// NewChatModel builds the chat model for the configured provider.
func NewChatModel(ctx context.Context, cfg config.CompletionConfig) (model.BaseChatModel, error) {
	if !cfg.Enabled() {
		return nil, ErrUnavailable
	}

	switch cfg.Provider {
	case config.ProviderArk:
		return cfg.Ark.NewChatModel(ctx, cfg.Temperature, cfg.MaxTokens)
	default:
		return NewOpenAIChatModel(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}), nil
	}
}

// Enabled reports whether a chat model is wired in.
func (s *Service) Enabled() bool {
	return s != nil && s.chain != nil
}

// Complete asks the model to answer userMessage. Failures of any kind,
// including the timeout, come back as the fallback reply.
func (s *Service) Complete(ctx context.Context, userMessage string) Reply {
	if !s.Enabled() {
		return s.fallbackReply(ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := map[string]any{
		"system": s.system,
		"query":  userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		log.Printf("[ai] completion failed, use fallback: %v", err)
		return s.fallbackReply(fmt.Errorf("failed to run completion chain: %w", err))
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		log.Printf("[ai] completion returned empty content, use fallback")
		return s.fallbackReply(ErrEmptyReply)
	}

	log.Printf("[ai] generated reply, length=%d", len(response.Content))
	return Reply{Content: response.Content, Outcome: OutcomeReplied}
}

func (s *Service) fallbackReply(err error) Reply {
	if s == nil || s.fallback == "" {
		return Reply{Content: FallbackReply, Outcome: OutcomeFallback, Err: err}
	}
	return Reply{Content: s.fallback, Outcome: OutcomeFallback, Err: err}
}
