package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nhsrag/internal/config"
	"nhsrag/internal/domain"
)

var testSource = config.SourceConfig{
	ContextDescription: "NHS health conditions and medical information",
	NotFoundMessage:    "no relevant NHS health information is available to answer this question",
}

func TestBuildMessageOrder(t *testing.T) {
	msgs := Build("some context", testSource, "What is ADHD?")
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, domain.RoleUser, msgs[2].Role)
}

func TestBuildQuestionUnmodified(t *testing.T) {
	question := "  What are the symptoms of ADHD in adults?  "
	msgs := Build("ctx", testSource, question)
	assert.Equal(t, question, msgs[2].Content)
}

func TestBuildSystemMessageContract(t *testing.T) {
	msgs := Build("ctx", testSource, "q")
	system := msgs[0].Content

	assert.Contains(t, system, testSource.ContextDescription)
	// The configured not-found sentence must appear verbatim.
	assert.Contains(t, system, `*"`+testSource.NotFoundMessage+`"*`)
	assert.Contains(t, system, "DO NOT generate or invent any URLs")
	assert.Contains(t, system, "markdown bullet points")
	assert.Contains(t, system, "Preserve Tables")
	assert.Contains(t, system, "Readers should never see raw URLs")
	// No leftover formatting verbs.
	assert.NotContains(t, system, "%s")
	assert.NotContains(t, system, "%!")
}

func TestBuildContextCarrierSeparateFromRules(t *testing.T) {
	contextText := "Source Information: [Section: Adhd Adults - Overview]\nContext: text"
	msgs := Build(contextText, testSource, "q")

	assert.Contains(t, msgs[1].Content, contextText)
	assert.Contains(t, msgs[1].Content, testSource.ContextDescription)
	assert.NotContains(t, msgs[0].Content, contextText)
}

func TestBuildIsPure(t *testing.T) {
	a := Build("ctx", testSource, "q")
	b := Build("ctx", testSource, "q")
	require.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a[0].Content, "You are a medical AI assistant"))
}
