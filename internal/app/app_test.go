package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nhsrag/internal/config"
)

func testConfig(indexType string) *config.AppConfig {
	return &config.AppConfig{
		Embedding: config.EmbeddingConfig{APIKeyEnv: "TEST_VOYAGE_API_KEY"},
		Index: config.IndexConfig{
			Type:      indexType,
			Host:      "test-index.svc.pinecone.io",
			APIKeyEnv: "TEST_PINECONE_API_KEY",
			Namespace: "test_namespace",
		},
	}
}

func TestBuildPipelineMemoryIndex(t *testing.T) {
	t.Setenv("TEST_VOYAGE_API_KEY", "vk")
	t.Setenv("TEST_PINECONE_API_KEY", "")

	p, err := BuildPipeline(testConfig("memory"), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestBuildPipelinePineconeIndex(t *testing.T) {
	t.Setenv("TEST_VOYAGE_API_KEY", "vk")
	t.Setenv("TEST_PINECONE_API_KEY", "pk")

	for _, indexType := range []string{"pinecone", ""} {
		p, err := BuildPipeline(testConfig(indexType), zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
}

func TestBuildPipelineUnknownIndexType(t *testing.T) {
	t.Setenv("TEST_VOYAGE_API_KEY", "vk")

	_, err := BuildPipeline(testConfig("qdrant"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown index type")
}
