package moonshot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"corporate-agent/internal/domain"
)

// ---------------------------------------------------------------------------
// chatURL helper
// ---------------------------------------------------------------------------

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.moonshot.cn/v1", "https://api.moonshot.cn/v1/chat/completions"},
		{"https://api.moonshot.cn/v1/", "https://api.moonshot.cn/v1/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/v1/chat/completions"},
		{"", "https://api.moonshot.cn/v1/chat/completions"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

// ---------------------------------------------------------------------------
// NewClient
// ---------------------------------------------------------------------------

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(" sk-test ")
	require.Equal(t, DefaultBaseURL, c.baseURL)
	require.Equal(t, "sk-test", c.apiKey)
	require.Equal(t, DefaultTemperature, c.temperature)
	require.Equal(t, DefaultMaxTokens, c.maxTokens)
	require.True(t, c.HasAPIKey())
}

func TestNewClient_WithSampling(t *testing.T) {
	c := NewClient("k", WithSampling(0.2, 0))
	require.Equal(t, 0.2, c.temperature)
	require.Equal(t, DefaultMaxTokens, c.maxTokens)
}

func TestChat_MissingKeySkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	require.False(t, c.HasAPIKey())
	_, err := c.Chat(context.Background(), DefaultModel, nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
	require.False(t, called)
}

// ---------------------------------------------------------------------------
// Client.Chat
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return NewClient(
		"sk-test",
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	)
}

func TestClient_Chat_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got chatRequest
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, "kimi-k2-5", got.Model)
		require.Equal(t, 0.7, got.Temperature)
		require.Equal(t, 2000, got.MaxTokens)
		require.Len(t, got.Messages, 2)
		require.Equal(t, "system", got.Messages[0].Role)
		require.Equal(t, "user", got.Messages[1].Role)
		require.Equal(t, "hi", got.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"object": "chat.completion",
			"created": 1670000000,
			"choices": [{
				"index": 0,
				"message": { "role": "assistant", "content": "Hello from Kimi" },
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Chat(context.Background(), DefaultModel, []domain.ChatMessage{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	require.Equal(t, "Hello from Kimi", resp)
}

func TestClient_Chat_StatusErrors(t *testing.T) {
	for _, status := range []int{400, 401, 429, 500} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))

		c := newTestClient(t, srv)
		_, err := c.Chat(context.Background(), DefaultModel, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unexpected status")

		var statusErr *HTTPStatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, status, statusErr.HTTPStatusCode())
		srv.Close()
	}
}

func TestClient_Chat_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`not-a-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Chat(context.Background(), DefaultModel, nil)
	require.ErrorContains(t, err, "decode response")
}

func TestClient_Chat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Chat(context.Background(), DefaultModel, nil)
	require.ErrorContains(t, err, "no choices")
}

func TestClient_Chat_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Chat(context.Background(), DefaultModel, nil)
	require.ErrorContains(t, err, "empty content")
}

func TestClient_Chat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.Chat(context.Background(), DefaultModel, nil)
	require.Error(t, err)
}

func TestClient_Chat_NetworkError(t *testing.T) {
	c := NewClient("sk-test", WithBaseURL("http://127.0.0.1:1"))
	c.httpClient = &http.Client{Timeout: 100 * time.Millisecond}

	_, err := c.Chat(context.Background(), DefaultModel, nil)
	require.ErrorContains(t, err, "request failed")
}

func TestClient_Chat_EmptyModel(t *testing.T) {
	c := NewClient("sk-test")
	_, err := c.Chat(context.Background(), "", nil)
	require.ErrorContains(t, err, "model")
}
