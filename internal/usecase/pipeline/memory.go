package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ratatoskr/internal/domain"
)

type HistoryStore interface {
	Load(ctx context.Context, username string) ([]domain.StoredMessage, error)
	Append(ctx context.Context, username string, msgs ...domain.StoredMessage) error
}

// Memory loads the user's history into the request before dispatch and
// appends the finished turn afterwards. Turns of one user are serialized;
// different users run in parallel.
type Memory struct {
	next    Stage
	history HistoryStore
	locks   *keyedMutex
	logger  *zap.Logger
}

func NewMemory(next Stage, history HistoryStore, logger *zap.Logger) *Memory {
	return &Memory{
		next:    next,
		history: history,
		locks:   newKeyedMutex(),
		logger:  orNop(logger),
	}
}

func MemoryMiddleware(history HistoryStore, logger *zap.Logger) Middleware {
	return func(next Stage) Stage {
		return NewMemory(next, history, logger)
	}
}

func (m *Memory) Handle(ctx context.Context, req *domain.RequestMessage) domain.ResponseMessage {
	unlock := m.locks.Lock(req.Username)
	defer unlock()

	fields := requestFields(req)

	msgs, err := m.history.Load(ctx, req.Username)
	if err != nil {
		m.logger.Warn("could not load history, continuing without it", append(fields, zap.Error(err))...)
		msgs = nil
	}
	req.Context = msgs

	resp := m.next.Handle(ctx, req)

	// Persist even if the caller has gone away; the reply is already made.
	err = m.history.Append(context.WithoutCancel(ctx), req.Username,
		domain.StoredMessage{Username: req.Username, Text: req.Text, Role: domain.RoleUser},
		domain.StoredMessage{Username: req.Username, Text: resp.Text, Role: domain.RoleAssistant},
	)
	if err != nil {
		m.logger.Error("could not save history", append(fields, zap.Error(err))...)
	}

	return resp
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
