// Package capability holds the handlers the selector chooses between.
// Each capability scores its relevance to a request and can then
// produce the response.
package capability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ratatoskr/internal/domain"
	"ratatoskr/internal/similarity"
)

var ErrNoEmbedding = errors.New("request has no embedding")

type Capability interface {
	// Name is a static label used in logs.
	Name() string
	// Check returns a relative relevance score; higher wins.
	Check(ctx context.Context, req *domain.RequestMessage) (float64, error)
	Execute(ctx context.Context, req *domain.RequestMessage) (domain.ResponseMessage, error)
}

type Embedder interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}

// semanticMatcher scores a request embedding against the embedding of a
// fixed description. The description vector is cached after the first
// successful lookup.
type semanticMatcher struct {
	description string
	embedder    Embedder

	mu     sync.Mutex
	vector []float32
}

func newSemanticMatcher(description string, embedder Embedder) *semanticMatcher {
	return &semanticMatcher{
		description: description,
		embedder:    embedder,
	}
}

func (m *semanticMatcher) score(ctx context.Context, req *domain.RequestMessage) (float64, error) {
	if len(req.Embedding) == 0 {
		return 0, ErrNoEmbedding
	}

	desc, err := m.descriptionVector(ctx)
	if err != nil {
		return 0, err
	}

	return similarity.Cosine(req.Embedding, desc)
}

func (m *semanticMatcher) descriptionVector(ctx context.Context) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vector != nil {
		return m.vector, nil
	}

	vec, err := m.embedder.Embedding(ctx, m.description)
	if err != nil {
		return nil, fmt.Errorf("embed description %q: %w", m.description, err)
	}
	m.vector = vec
	return vec, nil
}

// exactMatch scores 1 when text equals trigger and 0 otherwise.
func exactMatch(req *domain.RequestMessage, trigger string) float64 {
	if req.Text == trigger {
		return 1
	}
	return 0
}
