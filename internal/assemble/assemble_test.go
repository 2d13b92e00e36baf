package assemble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nhsrag/internal/domain"
)

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"nhs shape drops part number", "adhd-adults__Overview__Part_1", "Adhd Adults - Overview"},
		{"two segments", "adhd-adults__Symptoms__Part_1", "Adhd Adults - Symptoms"},
		{"children section", "adhd-children__Symptoms__Part_2", "Adhd Children - Symptoms"},
		{"empty passes through", "", ""},
		{"sentinel passes through", "Unknown section", "Unknown section"},
		{"no separators", "diabetes", "Diabetes"},
		{"dashes and underscores humanized", "type-2_diabetes", "Type 2 Diabetes"},
		{"trailing empty segment", "depression__", "Depression - "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLabel(tt.raw))
		})
	}
}

func TestBuildContextOrderAndSeparator(t *testing.T) {
	results := []domain.SearchResult{
		{Metadata: domain.ResultMetadata{OriginalID: "adhd-adults__Overview__Part_1", DocumentText: "overview text"}},
		{Metadata: domain.ResultMetadata{OriginalID: "adhd-adults__Symptoms__Part_1", DocumentText: "symptoms text"}},
		{Metadata: domain.ResultMetadata{OriginalID: "adhd-children__Symptoms__Part_2", DocumentText: "children text"}},
	}
	got := BuildContext(results)

	blocks := strings.Split(got, "\n\n---\n\n")
	require.Len(t, blocks, 3)
	assert.Contains(t, blocks[0], "[Section: Adhd Adults - Overview]")
	assert.Contains(t, blocks[1], "[Section: Adhd Adults - Symptoms]")
	assert.Contains(t, blocks[2], "[Section: Adhd Children - Symptoms]")
	assert.Contains(t, blocks[0], "Context: overview text")
}

func TestBuildContextURLAppendedInline(t *testing.T) {
	withURL := []domain.SearchResult{
		{Metadata: domain.ResultMetadata{OriginalID: "adhd__Overview__Part_1", DocumentText: "text", URL: "https://www.nhs.uk/conditions/adhd/"}},
	}
	got := BuildContext(withURL)
	assert.Contains(t, got, "text Available at: https://www.nhs.uk/conditions/adhd/")

	withoutURL := []domain.SearchResult{
		{Metadata: domain.ResultMetadata{OriginalID: "adhd__Overview__Part_1", DocumentText: "text"}},
	}
	assert.NotContains(t, BuildContext(withoutURL), "Available at:")
}

func TestBuildContextMissingIDUsesSentinel(t *testing.T) {
	results := []domain.SearchResult{{Metadata: domain.ResultMetadata{DocumentText: "text"}}}
	assert.Contains(t, BuildContext(results), "[Section: Unknown section]")
}

func TestExtractCitations(t *testing.T) {
	results := []domain.SearchResult{
		{Metadata: domain.ResultMetadata{OriginalID: "adhd-adults__Overview__Part_1", URL: "https://a", Source: "nhs"}},
		{Metadata: domain.ResultMetadata{OriginalID: "adhd-adults__Symptoms__Part_1", Source: "nhs"}},
	}
	citations := ExtractCitations(results)
	require.Len(t, citations, 2)
	assert.Equal(t, "Adhd Adults - Overview", citations[0].CleanSection)
	assert.Equal(t, "adhd-adults__Overview__Part_1", citations[0].OriginalID)
	assert.Equal(t, "https://a", citations[0].URL)
	assert.Equal(t, "nhs", citations[0].Source)
	assert.Equal(t, "Adhd Adults - Symptoms", citations[1].CleanSection)
}

func TestExtractCitationsKeepsDuplicates(t *testing.T) {
	r := domain.SearchResult{Metadata: domain.ResultMetadata{OriginalID: "adhd__Overview__Part_1", Source: "nhs"}}
	citations := ExtractCitations([]domain.SearchResult{r, r})
	require.Len(t, citations, 2)
	assert.Equal(t, citations[0], citations[1])
}

func TestExtractCitationsDefaults(t *testing.T) {
	citations := ExtractCitations([]domain.SearchResult{{}})
	require.Len(t, citations, 1)
	assert.Equal(t, "Unknown section", citations[0].OriginalID)
	assert.Equal(t, "Unknown section", citations[0].CleanSection)
	assert.Equal(t, "Unknown", citations[0].Source)
}
