package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectStream(t *testing.T, chunks <-chan string, errs <-chan error) (string, error) {
	t.Helper()
	var out string
	var streamErr error
	for chunks != nil || errs != nil {
		select {
		case c, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			out += c
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				streamErr = err
			}
		}
	}
	return out, streamErr
}

func TestOpenRouterStreamChat(t *testing.T) {
	var gotReq openRouterChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"Hel", "lo"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "key-123", "openai/gpt-4o-mini", "", "")
	chunks, errs := p.StreamChat(context.Background(), ChatRequest{
		Messages:    []Message{{Role: "user", Content: "hi"}},
		MaxTokens:   450,
		Temperature: 0.5,
	})

	out, err := collectStream(t, chunks, errs)
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)

	assert.True(t, gotReq.Stream)
	assert.Equal(t, 450, gotReq.MaxTokens)
	assert.Equal(t, 0.5, gotReq.Temperature)
	assert.Equal(t, "openai/gpt-4o-mini", gotReq.Model)
}

func TestOpenRouterStreamChat_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"message":"insufficient credits"}}`)
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "key-123", "openai/gpt-4o-mini", "", "")
	chunks, errs := p.StreamChat(context.Background(), ChatRequest{})

	out, err := collectStream(t, chunks, errs)
	assert.Empty(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient credits")
}

func TestOpenRouterStreamChat_MidStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"par\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"rate limited\"}}\n\n")
	}))
	defer srv.Close()

	p := NewOpenRouterProvider(srv.URL, "key-123", "openai/gpt-4o-mini", "", "")
	chunks, errs := p.StreamChat(context.Background(), ChatRequest{})

	out, err := collectStream(t, chunks, errs)
	assert.Equal(t, "par", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenRouterStreamChat_MissingKey(t *testing.T) {
	p := NewOpenRouterProvider("http://127.0.0.1:1", "", "m", "", "")
	chunks, errs := p.StreamChat(context.Background(), ChatRequest{})
	_, err := collectStream(t, chunks, errs)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("fake", func(_ context.Context, model string) (Provider, error) {
		return NewOllamaProvider("http://localhost:11434", model), nil
	})

	p, err := reg.Get(context.Background(), "fake", "m1")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = reg.Get(context.Background(), "unknown", "m1")
	assert.Error(t, err)
}
