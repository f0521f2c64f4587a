package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratatoskr/internal/config"
	"ratatoskr/internal/domain"
)

type recordingClient struct {
	got CompletionRequest
}

func (c *recordingClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	c.got = req
	return "ok", nil
}

func TestServiceCompleteSendsTranscript(t *testing.T) {
	client := &recordingClient{}
	svc := NewService(client, config.Config{
		Model:               "gpt-test",
		AssistantPrompt:     "be brief",
		MaxCompletionTokens: 64,
	})

	tr := svc.NewTranscript()
	tr.AddMessage(domain.RoleUser, "  hello  ").AddMessage(domain.RoleAssistant, "hi")

	resp, err := svc.Complete(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "gpt-test", client.got.Model)
	assert.Equal(t, 64, client.got.MaxCompletionTokens)
	assert.Equal(t, []Message{
		{Role: domain.RoleSystem, Text: "be brief"},
		{Role: domain.RoleUser, Text: "hello"},
		{Role: domain.RoleAssistant, Text: "hi"},
	}, client.got.Messages)
}

func TestServiceRejectsEmptyTranscript(t *testing.T) {
	svc := NewService(&recordingClient{}, config.Config{})
	_, err := svc.Complete(context.Background(), svc.NewTranscript())
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}
