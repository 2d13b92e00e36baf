package pinecone

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyEnv = "TEST_PINECONE_API_KEY"

func newTestIndex(t *testing.T, host string) *Index {
	t.Helper()
	t.Setenv(testKeyEnv, "pc-key")
	x, err := NewIndex(Config{Host: host, APIKeyEnv: testKeyEnv})
	require.NoError(t, err)
	return x
}

func TestQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "pc-key", r.Header.Get("Api-Key"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.TopK)
		assert.Equal(t, "nhs_guidelines_voyage_3_large", req.Namespace)
		assert.True(t, req.IncludeMetadata)
		assert.Equal(t, []float64{0.5, 0.5}, req.Vector)

		fmt.Fprint(w, `{"matches":[
			{"id":"c1","score":0.91,"metadata":{"original_id":"adhd-adults__Overview__Part_1","url":"https://www.nhs.uk/conditions/adhd/","document_text":"ADHD overview","source":"nhs"}},
			{"id":"c2","score":0.85,"metadata":{"original_id":"adhd-adults__Symptoms__Part_1","document_text":"symptoms"}}
		]}`)
	}))
	defer server.Close()

	results, err := newTestIndex(t, server.URL).Query(context.Background(), []float64{0.5, 0.5}, 3, "nhs_guidelines_voyage_3_large")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "c1", results[0].ID)
	assert.InDelta(t, 0.91, results[0].Score, 1e-9)
	assert.Equal(t, "adhd-adults__Overview__Part_1", results[0].Metadata.OriginalID)
	assert.Equal(t, "https://www.nhs.uk/conditions/adhd/", results[0].Metadata.URL)
	assert.Equal(t, "ADHD overview", results[0].Metadata.DocumentText)
	assert.Equal(t, "nhs", results[0].Metadata.Source)

	// Missing metadata fields decode to zero values, never an error.
	assert.Equal(t, "", results[1].Metadata.URL)
	assert.Equal(t, "", results[1].Metadata.Source)
}

func TestQueryErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"bad key"}`)
	}))
	defer server.Close()

	_, err := newTestIndex(t, server.URL).Query(context.Background(), []float64{1}, 5, "ns")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinecone query failed")
}

func TestNewIndexValidation(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	_, err := NewIndex(Config{Host: "h", APIKeyEnv: testKeyEnv})
	require.Error(t, err)

	t.Setenv(testKeyEnv, "k")
	_, err = NewIndex(Config{APIKeyEnv: testKeyEnv})
	require.Error(t, err)

	x, err := NewIndex(Config{Host: "my-index.svc.pinecone.io", APIKeyEnv: testKeyEnv})
	require.NoError(t, err)
	assert.Equal(t, "https://my-index.svc.pinecone.io", x.host)
}
