package capability

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"ratatoskr/internal/domain"
)

const (
	MemoryDumpName     = "memory_dump"
	MemoryDumpTrigger  = "Memory Dump"
	MemoryClearName    = "memory_clear"
	MemoryClearTrigger = "Memory Clear"

	clearReply = "Your conversation memory has been cleared."
)

type HistoryStore interface {
	Load(ctx context.Context, username string) ([]domain.StoredMessage, error)
	Clear(ctx context.Context, username string) error
}

// MemoryDump exports the requester's stored history as a CSV file.
type MemoryDump struct {
	history HistoryStore
	now     func() time.Time
}

func NewMemoryDump(history HistoryStore) *MemoryDump {
	return &MemoryDump{
		history: history,
		now:     time.Now,
	}
}

func (d *MemoryDump) Name() string {
	return MemoryDumpName
}

func (d *MemoryDump) Check(_ context.Context, req *domain.RequestMessage) (float64, error) {
	return exactMatch(req, MemoryDumpTrigger), nil
}

func (d *MemoryDump) Execute(ctx context.Context, req *domain.RequestMessage) (domain.ResponseMessage, error) {
	msgs, err := d.history.Load(ctx, req.Username)
	if err != nil {
		return domain.ResponseMessage{}, fmt.Errorf("load history: %w", err)
	}

	data, err := encodeHistory(msgs)
	if err != nil {
		return domain.ResponseMessage{}, err
	}

	return domain.NewFileResponse(dumpFilename(req.Username, d.now()), data), nil
}

func dumpFilename(username string, at time.Time) string {
	return fmt.Sprintf("memory-dump_%s_%s.csv", username, at.UTC().Format("20060102T150405Z"))
}

func encodeHistory(msgs []domain.StoredMessage) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"username", "role", "text"}); err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if err := w.Write([]string{m.Username, m.Role.String(), m.Text}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return buf.Bytes(), nil
}

// MemoryClear deletes the requester's stored history.
type MemoryClear struct {
	history HistoryStore
}

func NewMemoryClear(history HistoryStore) *MemoryClear {
	return &MemoryClear{history: history}
}

func (c *MemoryClear) Name() string {
	return MemoryClearName
}

func (c *MemoryClear) Check(_ context.Context, req *domain.RequestMessage) (float64, error) {
	return exactMatch(req, MemoryClearTrigger), nil
}

func (c *MemoryClear) Execute(ctx context.Context, req *domain.RequestMessage) (domain.ResponseMessage, error) {
	if err := c.history.Clear(ctx, req.Username); err != nil {
		return domain.ResponseMessage{}, fmt.Errorf("clear history: %w", err)
	}
	return domain.NewTextResponse(clearReply), nil
}
