package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChat(t *testing.T, reply string, captured *map[string]interface{}) IChatGPT {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	return NewChatGPT(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
}

func TestCompleteSendsGreetingParameters(t *testing.T) {
	var captured map[string]interface{}
	chat := setupChat(t, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"  Good morning, Alice!  "},"finish_reason":"stop"}]}`, &captured)

	text, err := chat.Complete(context.Background(), "system", "user")
	require.NoError(t, err)

	assert.Equal(t, "Good morning, Alice!", text)
	assert.Equal(t, "gpt-3.5-turbo", captured["model"])
	assert.EqualValues(t, 100, captured["max_tokens"])
	assert.InDelta(t, 0.7, captured["temperature"], 0.001)
}

func TestCompleteEmptyChoices(t *testing.T) {
	var captured map[string]interface{}
	chat := setupChat(t, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo","choices":[]}`, &captured)

	_, err := chat.Complete(context.Background(), "system", "user")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
