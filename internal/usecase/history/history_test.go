package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratatoskr/internal/adapter/memory"
	"ratatoskr/internal/domain"
)

func turn(username string, n int) []domain.StoredMessage {
	return []domain.StoredMessage{
		{Username: username, Text: fmt.Sprintf("q%d", n), Role: domain.RoleUser},
		{Username: username, Text: fmt.Sprintf("a%d", n), Role: domain.RoleAssistant},
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	repo := NewRepository(memory.NewStore(), DefaultLimit)
	msgs, err := repo.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAppendKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(memory.NewStore(), DefaultLimit)

	for n := 1; n <= 10; n++ {
		require.NoError(t, repo.Append(ctx, "alice", turn("alice", n)...))

		msgs, err := repo.Load(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, msgs, min(2*n, DefaultLimit))
	}

	msgs, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	// 20 appended, the 5 earliest evicted: q1 a1 q2 a2 q3.
	assert.Equal(t, "a3", msgs[0].Text)
	assert.Equal(t, "a10", msgs[len(msgs)-1].Text)
}

func TestAppendIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := NewRepository(store, DefaultLimit)

	require.NoError(t, repo.Append(ctx, "alice", turn("alice", 1)...))
	require.NoError(t, repo.Append(ctx, "bob", turn("bob", 1)...))

	assert.ElementsMatch(t, []string{"messages:alice", "messages:bob"}, store.Keys())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(memory.NewStore(), DefaultLimit)
	require.NoError(t, repo.Append(ctx, "alice", turn("alice", 1)...))

	require.NoError(t, repo.Clear(ctx, "alice"))
	msgs, err := repo.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, Key("alice"), "{nope"))

	_, err := NewRepository(store, DefaultLimit).Load(ctx, "alice")
	assert.Error(t, err)
}

func TestNonPositiveLimitUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultLimit, NewRepository(memory.NewStore(), 0).Limit())
}
