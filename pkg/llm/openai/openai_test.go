package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/harvest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewProvider("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewProvider_Options(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "")

	p, err := NewProvider("sk-test",
		WithModel("deepseek-chat"),
		WithBaseURL("https://api.deepseek.com/v1/"),
		WithTimeout(5*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, "deepseek-chat", p.GetModel())
	assert.Equal(t, "https://api.deepseek.com/v1", p.GetBaseURL())
	assert.Equal(t, 5*time.Second, p.timeout)
	assert.Equal(t, "deepseek-chat", p.GetModelInfo().Name)
	assert.Equal(t, "https://api.deepseek.com/v1", p.GetModelInfo().Metadata["base_url"])
}

func TestNewProvider_BaseURLFromEnv(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")

	p, err := NewProvider("sk-test")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v1", p.GetBaseURL())
}

func TestCloneWithModel(t *testing.T) {
	p, err := NewProvider("sk-test", WithModel("main-model"))
	require.NoError(t, err)

	clone := p.CloneWithModel("summary-model")

	assert.Equal(t, "summary-model", clone.GetModel())
	assert.Equal(t, "summary-model", clone.GetModelInfo().Name)
	assert.Equal(t, "main-model", p.GetModel())
	assert.Equal(t, "main-model", p.GetModelInfo().Name)
}

func TestComplete_Success(t *testing.T) {
	var gotBody struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
		Messages    []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	var gotAuth, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[{\"name\":\"Bob\"}]"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	p, err := NewProvider("sk-test", WithBaseURL(server.URL), WithModel("deepseek-chat"))
	require.NoError(t, err)

	temp := 0.3
	msg, err := p.Complete(context.Background(), []*types.Message{
		types.NewSystemMessage("extract people"),
		types.NewUserMessage("Bob called"),
	}, types.CompletionOptions{MaxOutputTokens: 500, Temperature: &temp})
	require.NoError(t, err)

	assert.Equal(t, types.RoleAssistant, msg.Role)
	assert.Equal(t, `[{"name":"Bob"}]`, msg.Content)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "deepseek-chat", gotBody.Model)
	assert.Equal(t, 500, gotBody.MaxTokens)
	assert.InDelta(t, 0.3, gotBody.Temperature, 1e-9)
	assert.False(t, gotBody.Stream)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Contains(t, string(gotBody.Messages[1].Content), "Bob called")
}

func TestComplete_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	p, err := NewProvider("sk-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")}, types.CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p, err := NewProvider("sk-test", WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")}, types.CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	p, err := NewProvider("sk-test", WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = p.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")}, types.CompletionOptions{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "deadline exceeded") || strings.Contains(err.Error(), "Timeout"),
		"unexpected error: %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
