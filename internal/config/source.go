package config

import (
	"fmt"
	"sort"
	"strings"
)

// InfoSource identifies one curated information source.
type InfoSource string

const SourceNHS InfoSource = "nhs"

// SourceConfig holds the per-source text used during prompt construction.
type SourceConfig struct {
	// ContextDescription names the corpus inside the prompt narrative.
	ContextDescription string
	// NotFoundMessage is the verbatim sentence the model must emit when the
	// retrieved context cannot answer the question.
	NotFoundMessage string
}

// Adding a source is a data change here, not a code change anywhere else.
var sourceConfigs = map[InfoSource]SourceConfig{
	SourceNHS: {
		ContextDescription: "NHS health conditions and medical information",
		NotFoundMessage:    "no relevant NHS health information is available to answer this question",
	},
}

// UnknownSourceError reports a source identifier with no registered config.
type UnknownSourceError struct {
	Source string
	Valid  []string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown info source %q, must be one of: %s", e.Source, strings.Join(e.Valid, ", "))
}

// ValidSources lists the registered source identifiers in stable order.
func ValidSources() []string {
	out := make([]string, 0, len(sourceConfigs))
	for s := range sourceConfigs {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// ResolveSource looks up the config for a source identifier, case-insensitively.
func ResolveSource(id string) (SourceConfig, error) {
	cfg, ok := sourceConfigs[InfoSource(strings.ToLower(id))]
	if !ok {
		return SourceConfig{}, &UnknownSourceError{Source: id, Valid: ValidSources()}
	}
	return cfg, nil
}
