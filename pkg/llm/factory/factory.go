package factory

import (
	"fmt"

	"ai-jobagent-be/pkg/llm"
	"ai-jobagent-be/pkg/llm/deepseek"
	"ai-jobagent-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "deepseek":
		if apiKey == "" {
			return nil, fmt.Errorf("deepseek provider requires an api key")
		}
		return deepseek.NewDeepSeekProvider(apiKey, modelName, baseURL), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
