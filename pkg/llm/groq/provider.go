package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aegis-review-be/pkg/llm"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// ErrMissingAPIKey is returned before any network call when the provider was
// constructed without credentials. Callers surface it as a configuration
// error scoped to the request, never as a crash.
var ErrMissingAPIKey = errors.New("groq: missing API key")

// GroqProvider talks to Groq's OpenAI-compatible chat completions API.
type GroqProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

// Ensure GroqProvider implements Provider
var _ llm.Provider = &GroqProvider{}

func NewGroqProvider(apiKey, modelName string) *GroqProvider {
	return &GroqProvider{
		BaseURL:   defaultBaseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

func (g *GroqProvider) buildRequest(ctx context.Context, system string, history []llm.Message, stream bool, opts []llm.Option) (*http.Request, error) {
	if g.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	options := llm.BuildOptions(opts)

	messages := make([]chatMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	for _, msg := range history {
		role := msg.Role
		// The session store speaks analyst/assistant; the wire format wants
		// user/assistant.
		if role == "analyst" {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payload := chatRequest{
		Model:       model,
		Messages:    messages,
		Stream:      stream,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	return req, nil
}

func (g *GroqProvider) Chat(ctx context.Context, system string, history []llm.Message, opts ...llm.Option) (string, error) {
	req, err := g.buildRequest(ctx, system, history, false, opts)
	if err != nil {
		return "", err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed chatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("groq: empty choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ChatStream issues a streaming completion. Events arrive in order; the
// channel closes after the terminal Done or error event. Cancelling the
// context aborts the stream with a context error event.
func (g *GroqProvider) ChatStream(ctx context.Context, system string, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamEvent, error) {
	req, err := g.buildRequest(ctx, system, history, true, opts)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("groq error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	events := make(chan llm.StreamEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				events <- llm.StreamEvent{Done: true}
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				events <- llm.StreamEvent{Err: fmt.Errorf("malformed stream chunk: %w", err)}
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				select {
				case events <- llm.StreamEvent{Delta: delta}:
				case <-ctx.Done():
					events <- llm.StreamEvent{Err: ctx.Err()}
					return
				}
			}
			if chunk.Choices[0].FinishReason != nil {
				events <- llm.StreamEvent{Done: true}
				return
			}
		}

		if err := scanner.Err(); err != nil {
			events <- llm.StreamEvent{Err: fmt.Errorf("read stream: %w", err)}
			return
		}
		// Stream ended without an explicit terminator; treat as complete.
		events <- llm.StreamEvent{Done: true}
	}()

	return events, nil
}
