package sentiment

import (
	"math"
	"strings"
)

// Label enum
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
	Error    Label = "Error"
)

// ParseLabel maps a case-insensitive label ("positive", "NEGATIVE", ...) to a Label.
// Unknown values map to Neutral.
func ParseLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return Positive
	case "negative":
		return Negative
	case "error":
		return Error
	default:
		return Neutral
	}
}

// Class is the lowercase form used for css classes and filters.
func (l Label) Class() string { return strings.ToLower(string(l)) }

// Model selects which scorer handles an analysis.
type Model string

const (
	ModelBasic      Model = "basic"
	ModelAdvanced   Model = "advanced"
	ModelBlockchain Model = "blockchain"
)

// ParseModel falls back to ModelBasic for anything unknown.
func ParseModel(s string) Model {
	switch Model(strings.ToLower(strings.TrimSpace(s))) {
	case ModelAdvanced:
		return ModelAdvanced
	case ModelBlockchain:
		return ModelBlockchain
	default:
		return ModelBasic
	}
}

// Detail is one per-sentence record returned by the remote analyzer.
type Detail struct {
	Sentence       string  `json:"sentence,omitempty"`
	Sentiment      string  `json:"sentiment"`
	Confidence     float64 `json:"confidence"`
	HateSpeech     bool    `json:"hate_speech"`
	HateConfidence float64 `json:"hate_confidence"`
	BadWord        bool    `json:"bad_word"`
}

// Result is the AnalysisResult record produced by every scorer.
// Percentages are in [0,100] and sum to 100 (within rounding) unless Sentiment is Error.
type Result struct {
	Sentiment          Label    `json:"sentiment"`
	Confidence         float64  `json:"confidence"`
	PositivePercentage float64  `json:"positive_percentage"`
	NegativePercentage float64  `json:"negative_percentage"`
	NeutralPercentage  float64  `json:"neutral_percentage"`
	KeyTopics          []string `json:"key_topics"`
	ConsensusLevel     *float64 `json:"consensus_level,omitempty"`
	ValidatorCount     *int     `json:"validator_count,omitempty"`
	Details            []Detail `json:"details,omitempty"`
	HateSpeech         *bool    `json:"hate_speech,omitempty"`
	Model              Model    `json:"model,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// ErrorResult builds the Error-sentiment record for a failed analysis.
func ErrorResult(err error) Result {
	return Result{Sentiment: Error, Error: err.Error(), KeyTopics: []string{}}
}

// Sum of the three percentages.
func (r Result) Sum() float64 {
	return r.PositivePercentage + r.NegativePercentage + r.NeutralPercentage
}

// Vote is a single simulated validator's opinion. Never persisted.
type Vote struct {
	Sentiment          Label
	PositivePercentage float64
	NegativePercentage float64
	NeutralPercentage  float64
}

// TopicScore is the share of matched topic keywords attributed to one category.
type TopicScore struct {
	Topic      string  `json:"topic"`
	Percentage float64 `json:"percentage"`
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// normalize rescales the triple so that it sums to 100.
// An all-zero triple becomes (0, 0, 100).
func normalize(pos, neg, neu float64) (float64, float64, float64) {
	total := pos + neg + neu
	if total <= 0 {
		return 0, 0, 100
	}
	return pos / total * 100, neg / total * 100, neu / total * 100
}
