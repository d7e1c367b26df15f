package runner_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/runner"
)

func newTestEngine(t *testing.T) (*cardflow.Engine, *memory.Directory) {
	t.Helper()
	dir := memory.NewDirectory()
	dir.SeedUser("alice",
		domain.Card{ID: "1234", Product: "Platinum Visa", Address: "1 Blossom Way"},
	)
	eng, err := cardflow.New(dir)
	require.NoError(t, err)
	return eng, dir
}

func TestRunner_CompletesReplacement(t *testing.T) {
	eng, dir := newTestEngine(t)

	input := strings.NewReader("lost\nyes\nconfirm\n")
	var output strings.Builder

	r := &runner.Runner{Input: input, Output: &output}
	state, err := r.Run(context.Background(), eng, nil, "alice")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCompleted, state.Outcome)
	assert.Contains(t, output.String(), "Card ending 1234 cancelled successfully.")
	assert.Len(t, dir.Replacements(), 1)
}

func TestRunner_EOFStopsCleanly(t *testing.T) {
	eng, _ := newTestEngine(t)

	// The stream ends before the dialogue is complete.
	input := strings.NewReader("lost\n")
	var output strings.Builder

	r := &runner.Runner{Input: input, Output: &output}
	state, err := r.Run(context.Background(), eng, nil, "alice")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeNone, state.Outcome)
	assert.Equal(t, "lost", state.Reason)
}

func TestRunner_QuitCommand(t *testing.T) {
	eng, _ := newTestEngine(t)

	input := strings.NewReader("/quit\n")
	var output strings.Builder

	r := &runner.Runner{Input: input, Output: &output}
	state, err := r.Run(context.Background(), eng, nil, "alice")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeNone, state.Outcome)
	assert.Contains(t, output.String(), "replace")
}

func TestRunner_PersistsEachTurn(t *testing.T) {
	eng, _ := newTestEngine(t)
	store := memory.NewStore()

	input := strings.NewReader("damaged\n")
	var output strings.Builder

	r := &runner.Runner{Input: input, Output: &output, Store: store}
	state, err := r.Run(context.Background(), eng, nil, "alice")
	require.NoError(t, err)

	persisted, err := store.Load(context.Background(), state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "damaged", persisted.Reason)
}

func TestRunner_RendererAppliedToPrompts(t *testing.T) {
	eng, _ := newTestEngine(t)

	input := strings.NewReader("")
	var output strings.Builder

	r := &runner.Runner{
		Input:    input,
		Output:   &output,
		Renderer: func(s string) (string, error) { return "[R] " + s, nil },
	}
	_, err := r.Run(context.Background(), eng, nil, "alice")
	require.NoError(t, err)

	assert.Contains(t, output.String(), "[R] ")
}
