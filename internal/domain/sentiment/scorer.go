package sentiment

import (
	"math"
	"regexp"
	"strings"
)

var wordRx = regexp.MustCompile(`\w+`)

// tokenize returns lowercase ASCII word tokens.
func tokenize(text string) []string {
	return wordRx.FindAllString(strings.ToLower(text), -1)
}

// Score runs the keyword-counting scorer. It is pure: the same text always yields the same
// Result.
func Score(text string) Result {
	words := tokenize(text)
	if len(words) == 0 {
		return Result{
			Sentiment:         Neutral,
			NeutralPercentage: 100,
			KeyTopics:         []string{},
		}
	}

	var positiveCount, negativeCount int
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			positiveCount++
		}
		if _, ok := negativeWords[w]; ok {
			negativeCount++
		}
	}

	score := float64(positiveCount - negativeCount)
	totalSentimentWords := float64(positiveCount + negativeCount)
	normalizedScore := 0.0
	if totalSentimentWords > 0 {
		normalizedScore = score / totalSentimentWords
	}

	var label Label
	var pos, neg float64
	switch {
	case normalizedScore > 0.1:
		label = Positive
		pos = 50 + normalizedScore*45
		neg = math.Max(5, 20-normalizedScore*15)
	case normalizedScore < -0.1:
		label = Negative
		neg = 50 + math.Abs(normalizedScore)*45
		pos = math.Max(5, 20-math.Abs(normalizedScore)*15)
	default:
		label = Neutral
		pos = 30 + normalizedScore*100
		neg = 30 - normalizedScore*100
	}
	neu := 100 - pos - neg

	pos, neg, neu = normalize(clamp(pos, 0, 100), clamp(neg, 0, 100), clamp(neu, 0, 100))

	confidence := math.Abs(normalizedScore)*60 + math.Min(40, math.Log1p(totalSentimentWords)*10)
	confidence = clamp(confidence, 10, 98)

	r := Result{
		Sentiment:  label,
		Confidence: round1(confidence),
		KeyTopics:  ExtractTopics(text),
	}
	r.PositivePercentage, r.NegativePercentage, r.NeutralPercentage = roundTriple(pos, neg)
	return r
}

// roundTriple rounds positive and negative to one decimal and derives neutral from them so the
// rounded triple still sums to 100.
func roundTriple(pos, neg float64) (float64, float64, float64) {
	p, n := round1(pos), round1(neg)
	return p, n, math.Max(0, round1(100-p-n))
}
