package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/siherrmann/mentis/helper"
)

// Client is the text generation surface the assistant uses for query
// rewriting, answer generation, extraction and evaluation scoring.
type Client interface {
	// Generate sends a single prompt to the model and returns its reply.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the client identifier (e.g. "openai", "ollama").
	Name() string
}

// NewClient creates the client selected by the configuration.
// The OpenAI API key is read from the OPENAI_API_KEY environment variable.
func NewClient(config helper.LLMConfig) (Client, error) {
	switch config.Provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIClient(apiKey, config.OpenAI.Model)
	case "ollama":
		return NewOllamaClient(config.Ollama.URL, config.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", config.Provider)
	}
}

// CleanJSON strips markdown code fences and surrounding prose from a model
// reply so the remainder can be unmarshalled. Models regularly wrap JSON in
// ```json fences even when told not to.
func CleanJSON(reply string) string {
	cleaned := strings.TrimSpace(reply)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		return strings.TrimSpace(cleaned)
	}

	// Cut leading prose before the first bracket and trailing prose after
	// the last one.
	firstObject := strings.Index(cleaned, "{")
	firstArray := strings.Index(cleaned, "[")
	start := firstObject
	end := strings.LastIndex(cleaned, "}")
	if firstArray >= 0 && (firstObject < 0 || firstArray < firstObject) {
		start = firstArray
		end = strings.LastIndex(cleaned, "]")
	}
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}
