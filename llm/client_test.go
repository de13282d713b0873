package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/siherrmann/mentis/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("OpenAI client requires API key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := NewClient(helper.LLMConfig{Provider: "openai"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("OpenAI client with API key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		client, err := NewClient(helper.LLMConfig{Provider: "openai", OpenAI: helper.OpenAIConfig{Model: "o3"}})
		assert.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, "openai", client.Name())
	})

	t.Run("Ollama client", func(t *testing.T) {
		client, err := NewClient(helper.LLMConfig{Provider: "ollama", Ollama: helper.OllamaConfig{URL: "http://localhost:11434", Model: "llama3.2"}})
		assert.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, "ollama", client.Name())
	})

	t.Run("Ollama client rejects broken url", func(t *testing.T) {
		_, err := NewClient(helper.LLMConfig{Provider: "ollama", Ollama: helper.OllamaConfig{URL: "://broken"}})
		assert.Error(t, err)
	})

	t.Run("Unknown provider", func(t *testing.T) {
		_, err := NewClient(helper.LLMConfig{Provider: "carrier-pigeon"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown llm provider")
	})
}

func TestCleanJSON(t *testing.T) {
	t.Run("Plain JSON passes through", func(t *testing.T) {
		assert.Equal(t, `{"a": 1}`, CleanJSON(`{"a": 1}`))
	})

	t.Run("Strips json code fence", func(t *testing.T) {
		reply := "```json\n[{\"query\": \"bicycle\"}]\n```"
		assert.Equal(t, `[{"query": "bicycle"}]`, CleanJSON(reply))
	})

	t.Run("Strips bare code fence", func(t *testing.T) {
		reply := "```\n{\"score\": 0.8}\n```"
		assert.Equal(t, `{"score": 0.8}`, CleanJSON(reply))
	})

	t.Run("Cuts surrounding prose around object", func(t *testing.T) {
		reply := `Here is the result: {"score": 0.8} Hope that helps!`
		assert.Equal(t, `{"score": 0.8}`, CleanJSON(reply))
	})

	t.Run("Cuts surrounding prose around array", func(t *testing.T) {
		reply := `Sure! [{"query": "gift"}] as requested.`
		assert.Equal(t, `[{"query": "gift"}]`, CleanJSON(reply))
	})

	t.Run("Array before object wins", func(t *testing.T) {
		reply := `[{"query": "gift", "category": "Event"}]`
		assert.Equal(t, reply, CleanJSON(reply))
	})

	t.Run("No JSON returns trimmed input", func(t *testing.T) {
		assert.Equal(t, "no structured data here", CleanJSON("  no structured data here \n"))
	})
}

func TestStubClient(t *testing.T) {
	t.Run("Pops responses in order and repeats the last", func(t *testing.T) {
		stub := NewStubClient("first", "second")

		first, err := stub.Generate(context.Background(), "prompt one")
		require.NoError(t, err)
		second, err := stub.Generate(context.Background(), "prompt two")
		require.NoError(t, err)
		third, err := stub.Generate(context.Background(), "prompt three")
		require.NoError(t, err)

		assert.Equal(t, "first", first)
		assert.Equal(t, "second", second)
		assert.Equal(t, "second", third)
		assert.Equal(t, []string{"prompt one", "prompt two", "prompt three"}, stub.Prompts)
	})

	t.Run("Returns configured error", func(t *testing.T) {
		stub := &StubClient{Err: fmt.Errorf("model offline")}
		_, err := stub.Generate(context.Background(), "prompt")
		assert.Error(t, err)
	})
}
