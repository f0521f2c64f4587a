package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ratatoskr/internal/domain"
	"ratatoskr/internal/usecase/capability"
)

// Embedding computes the request embedding once so every semantic
// capability scores against the same vector. On failure the request
// continues without one.
type Embedding struct {
	next     Stage
	embedder capability.Embedder
	logger   *zap.Logger
}

func NewEmbedding(next Stage, embedder capability.Embedder, logger *zap.Logger) *Embedding {
	return &Embedding{
		next:     next,
		embedder: embedder,
		logger:   orNop(logger),
	}
}

func EmbeddingMiddleware(embedder capability.Embedder, logger *zap.Logger) Middleware {
	return func(next Stage) Stage {
		return NewEmbedding(next, embedder, logger)
	}
}

func (e *Embedding) Handle(ctx context.Context, req *domain.RequestMessage) domain.ResponseMessage {
	if len(req.Embedding) == 0 && strings.TrimSpace(req.Text) != "" {
		vec, err := e.embedder.Embedding(ctx, req.Text)
		if err != nil {
			e.logger.Warn("could not embed request", append(requestFields(req), zap.Error(err))...)
		} else {
			req.Embedding = vec
		}
	}
	return e.next.Handle(ctx, req)
}
