package chat

import (
	"context"
	"errors"
	"strings"

	"ratatoskr/internal/config"
	"ratatoskr/internal/domain"
)

var ErrEmptyTranscript = errors.New("empty transcript")

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Model               string
	Messages            []Message
	MaxCompletionTokens int
}

type Message struct {
	Role domain.Role
	Text string
}

// Transcript is an ordered conversation built for a single completion.
type Transcript struct {
	messages []Message
}

func (t *Transcript) AddMessage(role domain.Role, text string) *Transcript {
	t.messages = append(t.messages, Message{
		Role: role,
		Text: strings.TrimSpace(text),
	})
	return t
}

func (t *Transcript) Messages() []Message {
	return append([]Message(nil), t.messages...)
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

type Service struct {
	client Client
	cfg    config.Config
}

func NewService(client Client, cfg config.Config) *Service {
	return &Service{
		client: client,
		cfg:    cfg,
	}
}

// NewTranscript starts a transcript with the configured assistant prompt.
func (s *Service) NewTranscript() *Transcript {
	t := &Transcript{}
	if strings.TrimSpace(s.cfg.AssistantPrompt) != "" {
		t.AddMessage(domain.RoleSystem, s.cfg.AssistantPrompt)
	}
	return t
}

func (s *Service) Complete(ctx context.Context, t *Transcript) (string, error) {
	if t == nil || t.Len() == 0 {
		return "", ErrEmptyTranscript
	}

	return s.client.Complete(ctx, CompletionRequest{
		Model:               s.cfg.Model,
		Messages:            t.Messages(),
		MaxCompletionTokens: s.cfg.MaxCompletionTokens,
	})
}
