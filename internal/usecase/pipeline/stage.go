// Package pipeline composes the request stages: access control, memory,
// embedding, and finally capability selection.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"ratatoskr/internal/domain"
)

// Stage handles a request and returns a response. A stage may answer on
// its own without calling the next one.
type Stage interface {
	Handle(ctx context.Context, req *domain.RequestMessage) domain.ResponseMessage
}

type StageFunc func(ctx context.Context, req *domain.RequestMessage) domain.ResponseMessage

func (f StageFunc) Handle(ctx context.Context, req *domain.RequestMessage) domain.ResponseMessage {
	return f(ctx, req)
}

// Middleware wraps the next stage.
type Middleware func(next Stage) Stage

// Chain wraps terminal with middlewares; the first middleware is the
// outermost and sees the request first.
func Chain(terminal Stage, middlewares ...Middleware) Stage {
	s := terminal
	for i := len(middlewares) - 1; i >= 0; i-- {
		s = middlewares[i](s)
	}
	return s
}

func requestFields(req *domain.RequestMessage) []zap.Field {
	return []zap.Field{
		zap.String("request_id", req.ID),
		zap.String("username", req.Username),
	}
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
