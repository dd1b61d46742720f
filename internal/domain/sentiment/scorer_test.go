package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t", "!!! ... ???"} {
		r := Score(text)
		assert.Equal(t, Neutral, r.Sentiment, "text %q", text)
		assert.Zero(t, r.Confidence)
		assert.Zero(t, r.PositivePercentage)
		assert.Zero(t, r.NegativePercentage)
		assert.Equal(t, 100.0, r.NeutralPercentage)
		assert.NotNil(t, r.KeyTopics)
		assert.Empty(t, r.KeyTopics)
	}
}

func TestScore_OnlyPositiveWords(t *testing.T) {
	r := Score("great amazing wonderful")

	assert.Equal(t, Positive, r.Sentiment)
	assert.Greater(t, r.Confidence, 50.0)
	assert.Equal(t, 73.9, r.Confidence)
	assert.Equal(t, 95.0, r.PositivePercentage)
	assert.Equal(t, 5.0, r.NegativePercentage)
	assert.Equal(t, 0.0, r.NeutralPercentage)
	assert.Equal(t, []string{GeneralTopic}, r.KeyTopics)
}

func TestScore_OnlyNegativeWords(t *testing.T) {
	r := Score("terrible awful horrible")

	assert.Equal(t, Negative, r.Sentiment)
	assert.Equal(t, 95.0, r.NegativePercentage)
	assert.Equal(t, 5.0, r.PositivePercentage)
}

func TestScore_Branches(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		sentiment  Label
		confidence float64
		pos, neg   float64
		neu        float64
	}{
		{"no polarity words", "the cat sat on the mat", Neutral, 10, 30, 30, 40},
		{"balanced", "good and bad", Neutral, 11, 30, 30, 40},
		{"leaning positive", "good good bad", Positive, 33.9, 65, 15, 20},
		{"leaning negative", "bad bad good", Negative, 33.9, 15, 65, 20},
		{"case insensitive", "GREAT Amazing", Positive, 71, 95, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Score(tt.text)
			assert.Equal(t, tt.sentiment, r.Sentiment)
			assert.InDelta(t, tt.confidence, r.Confidence, 0.001)
			assert.InDelta(t, tt.pos, r.PositivePercentage, 0.001)
			assert.InDelta(t, tt.neg, r.NegativePercentage, 0.001)
			assert.InDelta(t, tt.neu, r.NeutralPercentage, 0.001)
		})
	}
}

func TestScore_PercentagesSumTo100(t *testing.T) {
	texts := []string{
		"good",
		"bad",
		"good bad bad bad bad bad bad",
		"Product Review: The latest smartphone model exceeds expectations with its innovative features and improved battery life. This is great. However, the high price point may deter some consumers, which is bad.",
		"Investors remain optimistic about the long-term prospects despite short-term fluctuations. The sentiment is generally positive but cautious.",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		"love love love hate",
		"worst problem trouble issues bug but strong gains",
	}
	for _, text := range texts {
		r := Score(text)
		require.InDelta(t, 100, r.Sum(), 0.1, "text %q", text)
		for _, p := range []float64{r.PositivePercentage, r.NegativePercentage, r.NeutralPercentage} {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
		}
		assert.GreaterOrEqual(t, r.Confidence, 10.0)
		assert.LessOrEqual(t, r.Confidence, 98.0)
	}
}

func TestScore_Deterministic(t *testing.T) {
	text := "Bitcoin surged to new highs. Analysts are optimistic but cautious about volatility."
	assert.Equal(t, Score(text), Score(text))
}

func TestParseLabelAndModel(t *testing.T) {
	assert.Equal(t, Positive, ParseLabel("POSITIVE"))
	assert.Equal(t, Negative, ParseLabel(" negative "))
	assert.Equal(t, Neutral, ParseLabel("mixed"))
	assert.Equal(t, "error", Error.Class())

	assert.Equal(t, ModelAdvanced, ParseModel("Advanced"))
	assert.Equal(t, ModelBlockchain, ParseModel("blockchain"))
	assert.Equal(t, ModelBasic, ParseModel("transformer"))
}
