package helper

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LLMConfig selects and configures the language model client.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // openai | ollama
	OpenAI   OpenAIConfig `yaml:"openai,omitempty"`
	Ollama   OllamaConfig `yaml:"ollama,omitempty"`
}

// OpenAIConfig contains settings for the hosted OpenAI client. The API key
// always comes from the OPENAI_API_KEY environment variable, never the file.
type OpenAIConfig struct {
	Model string `yaml:"model"`
}

// OllamaConfig contains settings for a local Ollama server.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// EmbeddingConfig configures the local ONNX embedding model.
type EmbeddingConfig struct {
	ModelName string `yaml:"model_name"`
	ModelDir  string `yaml:"model_dir"`
	Dimension int    `yaml:"dimension"`
}

// RetrievalConfig mirrors the per-query retrieval knobs in the config file.
// The facade converts it into a model.QueryConfig at startup.
type RetrievalConfig struct {
	PerCategoryLimit   int     `yaml:"per_category_limit"`
	MaxTotalResults    int     `yaml:"max_total_results"`
	ExpandConnections  *bool   `yaml:"expand_connections,omitempty"`
	ConnectionDiscount float64 `yaml:"connection_discount"`
	OnRewriteError     string  `yaml:"on_rewrite_error"`
	FallbackCategory   string  `yaml:"fallback_category"`
}

// EvaluationConfig configures the evaluation harness.
type EvaluationConfig struct {
	QueriesFile string `yaml:"queries_file"`
	ResultsDir  string `yaml:"results_dir"`
	TopK        int    `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	UserID     string           `yaml:"user_id,omitempty"` // USER_ID env overrides
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// LoadAppConfig reads a config from a specified path. If the file does not
// exist, returns defaults.
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path chosen by the operator
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultAppConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyAppConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefaultAppConfig tries ./mentis.yaml first, then
// ~/.config/mentis/mentis.yaml. If neither exists, it writes defaults to the
// user path and returns them.
func LoadDefaultAppConfig() (*AppConfig, string, error) {
	cwdPath := "mentis.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := LoadAppConfig(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := LoadAppConfig(userPath)
		return cfg, userPath, err
	}
	cfg := defaultAppConfig()
	if err := SaveAppConfig(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// SaveAppConfig writes the config to the given path, creating directories as
// needed.
func SaveAppConfig(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mentis", "mentis.yaml"), nil
}

func defaultAppConfig() *AppConfig {
	cfg := &AppConfig{}
	applyAppConfigDefaults(cfg)
	return cfg
}

func applyAppConfigDefaults(cfg *AppConfig) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.OpenAI.Model == "" {
		cfg.LLM.OpenAI.Model = "o3"
	}
	if cfg.LLM.Ollama.URL == "" {
		cfg.LLM.Ollama.URL = "http://localhost:11434"
	}
	if cfg.LLM.Ollama.Model == "" {
		cfg.LLM.Ollama.Model = "llama3.2"
	}
	if cfg.Embedding.ModelName == "" {
		cfg.Embedding.ModelName = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embedding.ModelDir == "" {
		cfg.Embedding.ModelDir = "./models"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 384
	}
	if cfg.Retrieval.PerCategoryLimit == 0 {
		cfg.Retrieval.PerCategoryLimit = 5
	}
	if cfg.Retrieval.MaxTotalResults == 0 {
		cfg.Retrieval.MaxTotalResults = 15
	}
	if cfg.Retrieval.ExpandConnections == nil {
		expand := true
		cfg.Retrieval.ExpandConnections = &expand
	}
	if cfg.Retrieval.ConnectionDiscount == 0 {
		cfg.Retrieval.ConnectionDiscount = 0.5
	}
	if cfg.Retrieval.OnRewriteError == "" {
		cfg.Retrieval.OnRewriteError = "abort"
	}
	if cfg.Retrieval.FallbackCategory == "" {
		cfg.Retrieval.FallbackCategory = "Event"
	}
	if cfg.Evaluation.QueriesFile == "" {
		cfg.Evaluation.QueriesFile = "evaluation/queries.json"
	}
	if cfg.Evaluation.ResultsDir == "" {
		cfg.Evaluation.ResultsDir = "evaluation"
	}
	if cfg.Evaluation.TopK == 0 {
		cfg.Evaluation.TopK = 5
	}
}
