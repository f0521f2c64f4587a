package capability

import (
	"context"
	"strings"

	"ratatoskr/internal/domain"
	"ratatoskr/internal/usecase/chat"
)

const (
	ChatName        = "chat"
	chatDescription = "General questions"
	emptyChatReply  = "I need some content to work with."
)

type Completer interface {
	NewTranscript() *chat.Transcript
	Complete(ctx context.Context, t *chat.Transcript) (string, error)
}

// Chat answers general questions through the language model, replaying
// the stored conversation before the new turn.
type Chat struct {
	matcher   *semanticMatcher
	completer Completer
}

func NewChat(completer Completer, embedder Embedder) *Chat {
	return &Chat{
		matcher:   newSemanticMatcher(chatDescription, embedder),
		completer: completer,
	}
}

func (c *Chat) Name() string {
	return ChatName
}

func (c *Chat) Check(ctx context.Context, req *domain.RequestMessage) (float64, error) {
	return c.matcher.score(ctx, req)
}

func (c *Chat) Execute(ctx context.Context, req *domain.RequestMessage) (domain.ResponseMessage, error) {
	if strings.TrimSpace(req.Text) == "" {
		return domain.NewTextResponse(emptyChatReply), nil
	}

	t := c.completer.NewTranscript()
	for _, m := range req.Context {
		t.AddMessage(m.Role, m.Text)
	}
	t.AddMessage(domain.RoleUser, req.Text)

	resp, err := c.completer.Complete(ctx, t)
	if err != nil {
		return domain.ResponseMessage{}, err
	}
	return domain.NewTextResponse(resp), nil
}
