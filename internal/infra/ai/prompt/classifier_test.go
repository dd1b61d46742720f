package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassifications(t *testing.T) {
	got, err := ParseClassifications("```json\n{\"results\":[{\"sentiment\":\"positive\",\"confidence\":0.9,\"toxic\":false,\"toxicity\":0.1}]}\n```")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "positive", got[0].Sentiment)
	assert.Equal(t, 0.9, got[0].Confidence)

	_, err = ParseClassifications("not json")
	assert.Error(t, err)
}

func TestGetClassifierUserPrompt(t *testing.T) {
	p := GetClassifierUserPrompt([]string{"a \"quoted\" one.", "two"})
	assert.Contains(t, p, "these 2 sentences")
	assert.Contains(t, p, `["a \"quoted\" one.","two"]`)
}
