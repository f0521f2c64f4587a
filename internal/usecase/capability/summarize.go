package capability

import (
	"context"
	"fmt"
	"strings"

	"ratatoskr/internal/domain"
)

const (
	SummarizeName        = "summarize"
	summarizeDescription = "Summarize the conversation so far"
	nothingToSummarize   = "There is nothing to summarize yet."
	summarizeInstruction = "Summarize the following conversation in a few short sentences. " +
		"Keep names, decisions and open questions."
)

// Summarize condenses the stored conversation through the language model.
type Summarize struct {
	matcher   *semanticMatcher
	completer Completer
}

func NewSummarize(completer Completer, embedder Embedder) *Summarize {
	return &Summarize{
		matcher:   newSemanticMatcher(summarizeDescription, embedder),
		completer: completer,
	}
}

func (s *Summarize) Name() string {
	return SummarizeName
}

func (s *Summarize) Check(ctx context.Context, req *domain.RequestMessage) (float64, error) {
	return s.matcher.score(ctx, req)
}

func (s *Summarize) Execute(ctx context.Context, req *domain.RequestMessage) (domain.ResponseMessage, error) {
	if len(req.Context) == 0 {
		return domain.NewTextResponse(nothingToSummarize), nil
	}

	var b strings.Builder
	for _, m := range req.Context {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Text)
	}

	t := s.completer.NewTranscript()
	t.AddMessage(domain.RoleSystem, summarizeInstruction)
	t.AddMessage(domain.RoleUser, b.String())

	resp, err := s.completer.Complete(ctx, t)
	if err != nil {
		return domain.ResponseMessage{}, err
	}
	return domain.NewTextResponse(resp), nil
}
