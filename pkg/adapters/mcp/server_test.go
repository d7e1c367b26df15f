package mcp

import (
	"context"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := memory.NewDirectory()
	dir.SeedUser("alice", domain.Card{ID: "1234", Product: "Platinum Visa", Address: "1 Blossom Way"})

	eng, err := cardflow.New(dir)
	require.NoError(t, err)

	return NewServer(eng, session.NewManager(memory.NewStore()))
}

func TestStartReplacement(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	turn, err := s.handleStart(ctx, mcpgo.CallToolRequest{}, map[string]any{"user_id": "alice"})
	require.NoError(t, err)

	assert.NotEmpty(t, turn.SessionID)
	assert.Equal(t, domain.AwaitReason, turn.Awaiting)
	assert.False(t, turn.Done)
	assert.Contains(t, turn.Prompt, "what happened")
}

func TestStartReplacement_RequiresUserID(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleStart(context.Background(), mcpgo.CallToolRequest{}, map[string]any{})
	assert.ErrorContains(t, err, "user_id is required")
}

func TestReply_FullDialogue(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	turn, err := s.handleStart(ctx, mcpgo.CallToolRequest{}, map[string]any{"user_id": "alice"})
	require.NoError(t, err)

	for _, text := range []string{"lost", "yes"} {
		turn, err = s.handleReply(ctx, mcpgo.CallToolRequest{}, map[string]any{
			"session_id": turn.SessionID,
			"text":       text,
		})
		require.NoError(t, err)
		assert.False(t, turn.Done)
	}

	turn, err = s.handleReply(ctx, mcpgo.CallToolRequest{}, map[string]any{
		"session_id": turn.SessionID,
		"text":       "confirm",
	})
	require.NoError(t, err)

	assert.True(t, turn.Done)
	assert.Equal(t, domain.OutcomeCompleted, turn.Outcome)
	assert.Contains(t, turn.Prompt, "Card ending 1234 cancelled successfully.")

	// A finished session refuses further replies.
	_, err = s.handleReply(ctx, mcpgo.CallToolRequest{}, map[string]any{
		"session_id": turn.SessionID,
		"text":       "again",
	})
	assert.ErrorContains(t, err, "already finished")
}

func TestReply_UnknownSession(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleReply(context.Background(), mcpgo.CallToolRequest{}, map[string]any{
		"session_id": "nope",
		"text":       "hello",
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetSession_DoesNotAdvance(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	turn, err := s.handleStart(ctx, mcpgo.CallToolRequest{}, map[string]any{"user_id": "alice"})
	require.NoError(t, err)

	inspected, err := s.handleGet(ctx, mcpgo.CallToolRequest{}, map[string]any{"session_id": turn.SessionID})
	require.NoError(t, err)

	assert.Equal(t, turn.Awaiting, inspected.Awaiting)
	assert.Equal(t, turn.Prompt, inspected.Prompt)
	assert.False(t, inspected.Done)
}
