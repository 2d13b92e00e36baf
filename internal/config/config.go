package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EmbeddingConfig configures the contextual embedding client.
type EmbeddingConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	OutputDim   int    `yaml:"output_dim"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the vector index implementation.
type IndexConfig struct {
	Type        string `yaml:"type"`
	Host        string `yaml:"host"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Namespace   string `yaml:"namespace"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// BackendConfig describes one generation backend route. Match is compared
// against the lowercased model identifier; the first matching route wins.
type BackendConfig struct {
	Name        string `yaml:"name"`
	Match       string `yaml:"match"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// DefaultsConfig holds per-query defaults applied by the entry points.
type DefaultsConfig struct {
	Model  string `yaml:"model"`
	TopK   int    `yaml:"top_k"`
	Source string `yaml:"source"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Backends  []BackendConfig `yaml:"backends"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/nhsrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/nhsrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
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
	return filepath.Join(home, ".config", "nhsrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.voyageai.com/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "VOYAGE_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "voyage-context-3"
	}
	if cfg.Embedding.OutputDim == 0 {
		cfg.Embedding.OutputDim = 2048
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "pinecone"
	}
	if cfg.Index.Host == "" {
		cfg.Index.Host = "nhs-conditions.svc.pinecone.io"
	}
	if cfg.Index.APIKeyEnv == "" {
		cfg.Index.APIKeyEnv = "PINECONE_API_KEY"
	}
	if cfg.Index.Namespace == "" {
		cfg.Index.Namespace = "nhs_guidelines_voyage_3_large"
	}
	if cfg.Index.TimeoutSecs == 0 {
		cfg.Index.TimeoutSecs = 15
	}
	if len(cfg.Backends) == 0 {
		cfg.Backends = []BackendConfig{
			{
				Name:      "gemini",
				Match:     "gemini",
				BaseURL:   "https://generativelanguage.googleapis.com/v1beta/openai",
				APIKeyEnv: "GEMINI_API_KEY",
			},
			{
				Name:      "openai",
				Match:     "gpt",
				BaseURL:   "https://api.openai.com/v1",
				APIKeyEnv: "OPENAI_API_KEY",
			},
		}
	}
	for i := range cfg.Backends {
		if cfg.Backends[i].TimeoutSecs == 0 {
			cfg.Backends[i].TimeoutSecs = 120
		}
	}
	if cfg.Defaults.Model == "" {
		cfg.Defaults.Model = "gemini-2.0-flash"
	}
	if cfg.Defaults.TopK == 0 {
		cfg.Defaults.TopK = 5
	}
	if cfg.Defaults.Source == "" {
		cfg.Defaults.Source = "NHS"
	}
}
