// Package assemble turns ranked search results into the formatted context
// block and the citation list handed to the generation stage.
package assemble

import (
	"fmt"
	"strings"
	"unicode"

	"nhsrag/internal/domain"
)

const (
	// UnknownSection is the sentinel label for passages missing an id.
	UnknownSection = "Unknown section"

	sectionSeparator = "\n\n---\n\n"
	unknownSource    = "Unknown"
)

// CleanLabel derives a human-readable section label from a raw passage id.
// NHS ids look like "adhd-adults__Overview__Part_1": segment 0 is the
// condition, segment 1 the section, the part number is dropped. The function
// is total: any input, including empty or sentinel values, yields a defined
// output.
func CleanLabel(raw string) string {
	if raw == "" || raw == UnknownSection {
		return raw
	}
	if strings.Contains(raw, "__") {
		parts := strings.Split(raw, "__")
		if len(parts) >= 2 {
			return humanize(parts[0]) + " - " + humanize(parts[1])
		}
	}
	return humanize(raw)
}

// BuildContext formats results into one context block per passage, joined by
// a horizontal-rule separator. Input order is preserved: it reflects
// relevance rank and backends weight earlier context more heavily. The URL
// is appended inline to the text so the model can decide whether to cite it.
func BuildContext(results []domain.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		block := fmt.Sprintf("Source Information: [Section: %s]\nContext: %s",
			CleanLabel(sectionID(r)), r.Metadata.DocumentText)
		if r.Metadata.URL != "" {
			block += " Available at: " + r.Metadata.URL
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, sectionSeparator)
}

// ExtractCitations returns one citation per result, order-preserving.
// Duplicates are kept: the index may return overlapping chunks of the same
// document and each stands for itself.
func ExtractCitations(results []domain.SearchResult) []domain.Citation {
	citations := make([]domain.Citation, 0, len(results))
	for _, r := range results {
		id := sectionID(r)
		source := r.Metadata.Source
		if source == "" {
			source = unknownSource
		}
		citations = append(citations, domain.Citation{
			Source:       source,
			OriginalID:   id,
			URL:          r.Metadata.URL,
			CleanSection: CleanLabel(id),
		})
	}
	return citations
}

func sectionID(r domain.SearchResult) string {
	if r.Metadata.OriginalID == "" {
		return UnknownSection
	}
	return r.Metadata.OriginalID
}

// humanize replaces separator characters with spaces and title-cases words.
func humanize(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
