package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ratatoskr/internal/domain"
	"ratatoskr/internal/usecase/capability"
)

type Options struct {
	Admin        string
	Users        domain.UserRepository
	History      HistoryStore
	Embedder     capability.Embedder
	Capabilities []capability.Capability
	Fallback     capability.Capability
	ScoringLimit int
	Logger       *zap.Logger
}

// Handler is the pipeline entry point: access control, memory,
// embedding and capability selection, in that order.
type Handler struct {
	entry  Stage
	logger *zap.Logger
}

func New(opts Options) (*Handler, error) {
	if opts.Admin == "" {
		return nil, errors.New("administrator username is required")
	}
	if opts.Users == nil {
		return nil, errors.New("user repository is required")
	}
	if opts.History == nil {
		return nil, errors.New("history store is required")
	}
	logger := orNop(opts.Logger)

	selectorOpts := []SelectorOption{WithScoringLimit(opts.ScoringLimit)}
	if opts.Fallback != nil {
		selectorOpts = append(selectorOpts, WithFallback(opts.Fallback))
	}
	selector, err := NewSelector(logger, opts.Capabilities, selectorOpts...)
	if err != nil {
		return nil, err
	}

	middlewares := []Middleware{
		AccessMiddleware(opts.Users, opts.Admin, logger),
		MemoryMiddleware(opts.History, logger),
	}
	if opts.Embedder != nil {
		middlewares = append(middlewares, EmbeddingMiddleware(opts.Embedder, logger))
	}

	return &Handler{
		entry:  Chain(selector, middlewares...),
		logger: logger,
	}, nil
}

// Handle runs one inbound turn through the pipeline.
func (h *Handler) Handle(ctx context.Context, text, username string) domain.ResponseMessage {
	req := domain.NewRequest(text, username)
	req.ID = uuid.NewString()

	h.logger.Debug("request received", requestFields(req)...)
	return h.entry.Handle(ctx, req)
}
