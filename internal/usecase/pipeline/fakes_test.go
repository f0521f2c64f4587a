package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ratatoskr/internal/domain"
)

type stubCapability struct {
	name     string
	score    float64
	checkErr error
	delay    time.Duration
	resp     domain.ResponseMessage
	execErr  error
	executed atomic.Int32
}

func (c *stubCapability) Name() string { return c.name }

func (c *stubCapability) Check(ctx context.Context, _ *domain.RequestMessage) (float64, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return c.score, c.checkErr
}

func (c *stubCapability) Execute(context.Context, *domain.RequestMessage) (domain.ResponseMessage, error) {
	c.executed.Add(1)
	if c.execErr != nil {
		return domain.ResponseMessage{}, c.execErr
	}
	if c.resp.Text == "" {
		return domain.NewTextResponse(c.name), nil
	}
	return c.resp, nil
}

// countingStore wraps a key-value store and counts every call.
type countingStore struct {
	domain.KeyValueStore
	gets, sets, deletes atomic.Int32
	getErr, setErr      error
}

func (s *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.gets.Add(1)
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.KeyValueStore.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key, value string) error {
	s.sets.Add(1)
	if s.setErr != nil {
		return s.setErr
	}
	return s.KeyValueStore.Set(ctx, key, value)
}

func (s *countingStore) Delete(ctx context.Context, key string) error {
	s.deletes.Add(1)
	return s.KeyValueStore.Delete(ctx, key)
}

type staticUsers struct {
	names []string
	err   error
}

func (u staticUsers) AllowedUsernames(context.Context) ([]string, error) {
	return u.names, u.err
}

type mapEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   []string
}

func (e *mapEmbedder) Embedding(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, text)
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (e *mapEmbedder) setErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// recordStage captures the request it receives.
type recordStage struct {
	got   *domain.RequestMessage
	calls int
	resp  domain.ResponseMessage
}

func (s *recordStage) Handle(_ context.Context, req *domain.RequestMessage) domain.ResponseMessage {
	s.calls++
	cp := *req
	cp.Context = append([]domain.StoredMessage(nil), req.Context...)
	s.got = &cp
	if s.resp.Text == "" {
		return domain.NewTextResponse("reply to " + req.Text)
	}
	return s.resp
}
