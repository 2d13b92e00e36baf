package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "voyage-context-3", cfg.Embedding.Model)
	assert.Equal(t, 2048, cfg.Embedding.OutputDim)
	assert.Equal(t, "pinecone", cfg.Index.Type)
	assert.Equal(t, "nhs_guidelines_voyage_3_large", cfg.Index.Namespace)
	assert.Equal(t, "gemini-2.0-flash", cfg.Defaults.Model)
	assert.Equal(t, 5, cfg.Defaults.TopK)
	assert.Equal(t, "NHS", cfg.Defaults.Source)
	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, "gemini", cfg.Backends[0].Match)
	assert.Equal(t, "gpt", cfg.Backends[1].Match)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("index:\n  host: my-index.svc.pinecone.io\ndefaults:\n  top_k: 10\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my-index.svc.pinecone.io", cfg.Index.Host)
	assert.Equal(t, 10, cfg.Defaults.TopK)
	// Untouched sections still get defaults.
	assert.Equal(t, "VOYAGE_API_KEY", cfg.Embedding.APIKeyEnv)
	assert.Equal(t, "nhs_guidelines_voyage_3_large", cfg.Index.Namespace)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultConfig()
	cfg.Defaults.Model = "gpt-4o-mini"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", loaded.Defaults.Model)
	assert.Equal(t, cfg.Index.Namespace, loaded.Index.Namespace)
}
