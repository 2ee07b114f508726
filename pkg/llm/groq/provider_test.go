package groq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aegis-review-be/pkg/llm"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GroqProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewGroqProvider("test-key", "test-model")
	p.BaseURL = srv.URL
	return p
}

func TestChatStreamAccumulates(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"The risk "}}]}` + "\n\n"))
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"score is 41%."}}]}` + "\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	})

	events, err := p.ChatStream(context.Background(), "system prompt", []llm.Message{
		{Role: "analyst", Content: "why this score?"},
	})
	if err != nil {
		t.Fatalf("ChatStream error: %v", err)
	}

	text, err := llm.Collect(events)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if text != "The risk score is 41%." {
		t.Errorf("text = %q", text)
	}
}

func TestChatStreamMalformedChunk(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`data: {"choices":[{"delta":{"content":"ok"}}]}` + "\n\n"))
		w.Write([]byte("data: {not json\n\n"))
	})

	events, err := p.ChatStream(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("ChatStream error: %v", err)
	}
	if _, err := llm.Collect(events); err == nil {
		t.Fatal("Collect should surface the malformed chunk")
	}
}

func TestChatStreamHTTPError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := p.ChatStream(context.Background(), "", nil); err == nil {
		t.Fatal("ChatStream should fail on non-200 status")
	}
}

func TestMissingAPIKey(t *testing.T) {
	p := NewGroqProvider("", "test-model")
	if _, err := p.ChatStream(context.Background(), "", nil); err != ErrMissingAPIKey {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
	if _, err := p.Chat(context.Background(), "", nil); err != ErrMissingAPIKey {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestChatNonStreaming(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"APPROVE stands."}}]}`))
	})

	text, err := p.Chat(context.Background(), "system", []llm.Message{{Role: "analyst", Content: "final word?"}})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if text != "APPROVE stands." {
		t.Errorf("text = %q", text)
	}
}
