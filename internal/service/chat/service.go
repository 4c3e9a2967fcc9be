package chat

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/psychai/companion/internal/model/chat"
)

const summaryLength = 40

var ErrInvalidRole = errors.New("invalid message role")

// Service holds the single shared conversation and its archive.
type Service struct {
	mu        sync.RWMutex
	messages  []chat.Message
	summaries []chat.SessionSummary
	now       func() time.Time
}

// NewService bootstraps an empty in-memory conversation.
func NewService() *Service {
	return &Service{
		messages: make([]chat.Message, 0, 16),
		now:      time.Now,
	}
}

// Post appends a message to the active conversation.
func (s *Service) Post(_ context.Context, role chat.Role, content string) (chat.Message, error) {
	if role != chat.RolePatient && role != chat.RoleAssistant {
		return chat.Message{}, ErrInvalidRole
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()

	return message, nil
}

// StartNew archives a non-empty conversation under its opening line and
// clears it. The returned flag reports whether a summary was archived.
func (s *Service) StartNew(_ context.Context) (chat.SessionSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return chat.SessionSummary{}, false
	}

	summary := chat.SessionSummary{
		ID:        uuid.NewString(),
		Text:      truncate(s.messages[0].Content, summaryLength) + "...",
		CreatedAt: s.now(),
	}
	s.summaries = append(s.summaries, summary)
	s.messages = make([]chat.Message, 0, 16)
	return summary, true
}

// Transcript returns a copy of the active conversation.
func (s *Service) Transcript(_ context.Context) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// RecentSummaries returns up to n summaries, newest first. n <= 0 returns all.
func (s *Service) RecentSummaries(_ context.Context, n int) []chat.SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.summaries) {
		n = len(s.summaries)
	}

	recent := make([]chat.SessionSummary, 0, n)
	for i := len(s.summaries) - 1; i >= len(s.summaries)-n; i-- {
		recent = append(recent, s.summaries[i])
	}
	return recent
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
