package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis-review-be/pkg/llm/groq"
	"aegis-review-be/pkg/llm/ollama"
)

func TestNewProviderGroq(t *testing.T) {
	p, err := NewProvider("groq", "", "", "key")
	require.NoError(t, err)

	gp, ok := p.(*groq.GroqProvider)
	require.True(t, ok)
	assert.Equal(t, "llama-3.3-70b-versatile", gp.ModelName)
	assert.NotEmpty(t, gp.BaseURL)
}

func TestNewProviderGroqCustomBaseURL(t *testing.T) {
	p, err := NewProvider("groq", "m", "http://proxy.internal/v1", "key")
	require.NoError(t, err)

	gp, ok := p.(*groq.GroqProvider)
	require.True(t, ok)
	assert.Equal(t, "http://proxy.internal/v1", gp.BaseURL)
}

func TestNewProviderOllamaDefaultBaseURL(t *testing.T) {
	p, err := NewProvider("ollama", "m", "", "")
	require.NoError(t, err)

	op, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", op.BaseURL)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("hal9000", "", "", "")
	require.Error(t, err)
}
