package pipeline

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ratatoskr/internal/domain"
	"ratatoskr/internal/usecase/capability"
)

const ApologyText = "Sorry, I could not handle that message right now. Please try again later."

var (
	ErrNoCapabilities = errors.New("no capabilities registered")
	ErrNoMatch        = errors.New("no capability produced a usable score")
)

type SelectorOption func(*Selector)

// WithFallback sets the capability dispatched when no capability could
// be scored, for example while the embedding service is down.
func WithFallback(c capability.Capability) SelectorOption {
	return func(s *Selector) {
		s.fallback = c
	}
}

// WithScoringLimit bounds how many checks run at once. Zero means no bound.
func WithScoringLimit(n int) SelectorOption {
	return func(s *Selector) {
		s.limit = n
	}
}

// Selector scores every capability and dispatches to the best one. Only
// positive scores can win; ties go to the capability registered first.
type Selector struct {
	capabilities []capability.Capability
	fallback     capability.Capability
	limit        int
	logger       *zap.Logger
}

func NewSelector(logger *zap.Logger, caps []capability.Capability, opts ...SelectorOption) (*Selector, error) {
	if len(caps) == 0 {
		return nil, ErrNoCapabilities
	}
	s := &Selector{
		capabilities: append([]capability.Capability(nil), caps...),
		logger:       orNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type scored struct {
	score float64
	err   error
}

// Select runs every check concurrently and returns the winner.
func (s *Selector) Select(ctx context.Context, req *domain.RequestMessage) (capability.Capability, error) {
	results := make([]scored, len(s.capabilities))

	g, gctx := errgroup.WithContext(ctx)
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}
	for i, c := range s.capabilities {
		g.Go(func() error {
			score, err := c.Check(gctx, req)
			results[i] = scored{score: score, err: err}
			return nil
		})
	}
	_ = g.Wait()

	fields := requestFields(req)
	best, bestScore := -1, 0.0
	for i, r := range results {
		name := s.capabilities[i].Name()
		if r.err != nil {
			s.logger.Warn("capability check failed",
				append(fields, zap.String("capability", name), zap.Error(r.err))...)
			continue
		}
		if math.IsNaN(r.score) || math.IsInf(r.score, 0) {
			s.logger.Warn("capability returned non-finite score",
				append(fields, zap.String("capability", name))...)
			continue
		}
		s.logger.Debug("capability scored",
			append(fields, zap.String("capability", name), zap.Float64("score", r.score))...)
		if r.score > bestScore {
			best, bestScore = i, r.score
		}
	}

	if best >= 0 {
		return s.capabilities[best], nil
	}
	if s.fallback != nil {
		s.logger.Warn("no capability scored, using fallback",
			append(fields, zap.String("capability", s.fallback.Name()))...)
		return s.fallback, nil
	}
	return nil, ErrNoMatch
}

func (s *Selector) Handle(ctx context.Context, req *domain.RequestMessage) domain.ResponseMessage {
	fields := requestFields(req)

	winner, err := s.Select(ctx, req)
	if err != nil {
		s.logger.Error("capability selection failed", append(fields, zap.Error(err))...)
		return domain.NewTextResponse(ApologyText)
	}

	s.logger.Info("dispatching", append(fields, zap.String("capability", winner.Name()))...)
	resp, err := winner.Execute(ctx, req)
	if err != nil {
		s.logger.Error("capability execution failed",
			append(fields, zap.String("capability", winner.Name()), zap.Error(err))...)
		return domain.NewTextResponse(ApologyText)
	}
	return resp
}
