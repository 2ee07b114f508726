package factory

import (
	"fmt"

	"aegis-review-be/pkg/llm"
	"aegis-review-be/pkg/llm/groq"
	"aegis-review-be/pkg/llm/ollama"
)

func NewProvider(providerType, modelName, baseURL, apiKey string) (llm.Provider, error) {
	switch providerType {
	case "groq":
		if modelName == "" {
			modelName = "llama-3.3-70b-versatile"
		}
		p := groq.NewGroqProvider(apiKey, modelName)
		if baseURL != "" {
			p.BaseURL = baseURL
		}
		return p, nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
