package capability

import (
	"context"

	"ratatoskr/internal/domain"
)

const (
	PrivacyName        = "privacy"
	privacyDescription = "Messages and queries about data privacy"
)

const privacyReply = `Your messages are stored only to give the assistant short-term context: ` +
	`the most recent turns of your conversation are kept and older ones are discarded. ` +
	`Ask for debug options to export or clear what is stored about you.`

type Privacy struct {
	matcher *semanticMatcher
}

func NewPrivacy(embedder Embedder) *Privacy {
	return &Privacy{matcher: newSemanticMatcher(privacyDescription, embedder)}
}

func (p *Privacy) Name() string {
	return PrivacyName
}

func (p *Privacy) Check(ctx context.Context, req *domain.RequestMessage) (float64, error) {
	return p.matcher.score(ctx, req)
}

func (p *Privacy) Execute(context.Context, *domain.RequestMessage) (domain.ResponseMessage, error) {
	return domain.NewTextResponse(privacyReply), nil
}
