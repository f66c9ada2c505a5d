package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c := NewClient("sk-test", "gpt-4o-mini", time.Second, zaptest.NewLogger(t))
	c.baseURL = server.URL
	return c
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" hello "}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	text, err := c.Complete(context.Background(), "pick a food")

	require.NoError(t, err)
	assert.Equal(t, "hello", text, "content is trimmed")
	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "pick a food", captured.Messages[0].Content)
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Complete(context.Background(), "prompt")

	assert.ErrorContains(t, err, "no choices")
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Complete(context.Background(), "prompt")

	assert.ErrorContains(t, err, "401")
}

func TestListModelsFiltersToChatFamilies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"gpt-4o-mini"},{"id":"whisper-1"},{"id":"o3-mini"},{"id":"text-embedding-3-small"}]}`))
	}))
	defer server.Close()

	models, err := newTestClient(t, server).ListModels(context.Background())

	require.NoError(t, err)
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	assert.ElementsMatch(t, []string{"gpt-4o-mini", "o3-mini"}, ids)
}
