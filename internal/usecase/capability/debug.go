package capability

import (
	"context"

	"ratatoskr/internal/domain"
)

const (
	DebugName        = "debug"
	debugDescription = "Debugging capability"
	debugReply       = "I've sent you some debug options, you should see the buttons below."
)

type Debug struct {
	matcher *semanticMatcher
}

func NewDebug(embedder Embedder) *Debug {
	return &Debug{matcher: newSemanticMatcher(debugDescription, embedder)}
}

func (d *Debug) Name() string {
	return DebugName
}

func (d *Debug) Check(ctx context.Context, req *domain.RequestMessage) (float64, error) {
	return d.matcher.score(ctx, req)
}

func (d *Debug) Execute(context.Context, *domain.RequestMessage) (domain.ResponseMessage, error) {
	return domain.NewOptionsResponse(debugReply, []string{MemoryDumpTrigger, MemoryClearTrigger}), nil
}
