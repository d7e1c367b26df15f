package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardflow"
	httpadapter "github.com/aretw0/cardflow/pkg/adapters/http"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/session"
)

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Prompt    string          `json:"prompt"`
	Awaiting  domain.Awaiting `json:"awaiting"`
	Outcome   domain.Outcome  `json:"outcome"`
	Done      bool            `json:"done"`
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	dir := memory.NewDirectory()
	dir.SeedUser("alice",
		domain.Card{ID: "1234", Product: "Platinum Visa", Address: "1 Blossom Way"},
		domain.Card{ID: "5678", Product: "Travel Mastercard", Address: "2 Orchard Ln"},
	)

	eng, err := cardflow.New(dir)
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore())
	return httpadapter.NewHandler(eng, sessions)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)
	rr := doJSON(t, handler, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["version"])
}

func TestCreateSession_ReturnsOpeningPrompt(t *testing.T) {
	handler := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodPost, "/sessions", map[string]string{"user_id": "alice"})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeSession(t, rr)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, domain.AwaitReason, resp.Awaiting)
	assert.False(t, resp.Done)
	assert.Contains(t, resp.Prompt, "what happened")
}

func TestCreateSession_RequiresUserID(t *testing.T) {
	handler := newTestHandler(t)
	rr := doJSON(t, handler, http.MethodPost, "/sessions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFullDialogueOverHTTP(t *testing.T) {
	handler := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodPost, "/sessions", map[string]string{"user_id": "alice"})
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decodeSession(t, rr)
	inputPath := fmt.Sprintf("/sessions/%s/input", created.SessionID)

	steps := []struct {
		text     string
		awaiting domain.Awaiting
	}{
		{"stolen", domain.AwaitCardSelection},
		{"5678", domain.AwaitAddressConfirm},
		{"yes", domain.AwaitFinalConfirm},
	}
	for _, step := range steps {
		rr = doJSON(t, handler, http.MethodPost, inputPath, map[string]string{"text": step.text})
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeSession(t, rr)
		assert.Equal(t, step.awaiting, resp.Awaiting, "after input %q", step.text)
		assert.False(t, resp.Done)
	}

	rr = doJSON(t, handler, http.MethodPost, inputPath, map[string]string{"text": "confirm"})
	require.Equal(t, http.StatusOK, rr.Code)
	final := decodeSession(t, rr)
	assert.True(t, final.Done)
	assert.Equal(t, domain.OutcomeCompleted, final.Outcome)
	assert.Contains(t, final.Prompt, "Card ending 5678 cancelled successfully.")

	// Terminal sessions refuse further input.
	rr = doJSON(t, handler, http.MethodPost, inputPath, map[string]string{"text": "hello?"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetSession(t *testing.T) {
	handler := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodPost, "/sessions", map[string]string{"user_id": "alice"})
	created := decodeSession(t, rr)

	rr = doJSON(t, handler, http.MethodGet, "/sessions/"+created.SessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeSession(t, rr)
	assert.Equal(t, created.SessionID, resp.SessionID)
	assert.Equal(t, domain.AwaitReason, resp.Awaiting)
}

func TestGetSession_NotFound(t *testing.T) {
	handler := newTestHandler(t)
	rr := doJSON(t, handler, http.MethodGet, "/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListAndDeleteSessions(t *testing.T) {
	handler := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodPost, "/sessions", map[string]string{"user_id": "alice"})
	created := decodeSession(t, rr)

	rr = doJSON(t, handler, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Contains(t, list["sessions"], created.SessionID)

	rr = doJSON(t, handler, http.MethodDelete, "/sessions/"+created.SessionID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, "/sessions/"+created.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rr := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
