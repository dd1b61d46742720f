package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GetClassifierSystemPrompt provides strict directions and schema for the sentence classifier.
func GetClassifierSystemPrompt() string {
	return `You are a sentiment and toxicity classifier. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- results has exactly one item per input sentence, in the same order.
- sentiment is one of: positive, negative, neutral (lowercase).
- confidence and toxicity are numbers between 0 and 1.
- toxic is true when the sentence is hateful, abusive or harassing.

Schema (example with one sentence):
{
  "results": [
    {"sentiment": "neutral", "confidence": 0.0, "toxic": false, "toxicity": 0.0}
  ]
}`
}

// GetClassifierUserPrompt lists the sentences as a numbered JSON array.
func GetClassifierUserPrompt(units []string) string {
	b, _ := json.Marshal(units)
	return fmt.Sprintf("Classify each of these %d sentences and respond with the JSON per schema.\nSentences: %s", len(units), b)
}

// Classification is the per-sentence verdict the classifier prompt asks for.
type Classification struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Toxic      bool    `json:"toxic"`
	Toxicity   float64 `json:"toxicity"`
}

// ParseClassifications decodes the model output, tolerating code fences around the object.
func ParseClassifications(content string) ([]Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out struct {
		Results []Classification `json:"results"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, fmt.Errorf("decode classifier output: %w", err)
	}
	return out.Results, nil
}
