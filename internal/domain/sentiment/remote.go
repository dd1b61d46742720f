package sentiment

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// RemoteRequest is the body sent to a remote analysis endpoint.
type RemoteRequest struct {
	Text string `json:"text"`
}

// RemoteResponse is the structured reply of a remote analyzer. Confidence is in [0,1].
type RemoteResponse struct {
	Text       string   `json:"text,omitempty"`
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Details    []Detail `json:"details"`
	HateSpeech bool     `json:"hate_speech"`
}

// FromRemote converts a remote reply into a Result. Percentages are label frequencies over
// details; a reply without details is reported as fully neutral.
func FromRemote(text string, resp RemoteResponse) Result {
	label := Neutral
	if resp.Sentiment != "" {
		label = ParseLabel(resp.Sentiment)
	}
	hate := resp.HateSpeech
	r := Result{
		Sentiment:  label,
		Confidence: resp.Confidence * 100,
		KeyTopics:  ExtractTopics(text),
		Details:    resp.Details,
		HateSpeech: &hate,
		Model:      ModelAdvanced,
	}

	n := len(resp.Details)
	if n == 0 {
		r.NeutralPercentage = 100
		return r
	}
	var pos, neg, neu int
	for _, d := range resp.Details {
		switch strings.ToLower(d.Sentiment) {
		case "positive":
			pos++
		case "negative":
			neg++
		case "neutral":
			neu++
		}
	}
	r.PositivePercentage = float64(pos) / float64(n) * 100
	r.NegativePercentage = float64(neg) / float64(n) * 100
	r.NeutralPercentage = float64(neu) / float64(n) * 100
	return r
}

const (
	sentenceSplitThreshold = 100
	toxicThreshold         = 0.75
	toxicPositiveCeiling   = 0.85
	badWordPositiveCeiling = 0.75
	downgradedConfidence   = 0.6
	badWordNeutralCeiling  = 0.5
)

var (
	mentionRx  = regexp.MustCompile(`(@[A-Za-z0-9_]+)`)
	linkRx     = regexp.MustCompile(`(https?://[^\s]+)`)
	sentenceRx = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Preprocess masks user handles and links the way social-media classifiers expect.
func Preprocess(text string) string {
	text = mentionRx.ReplaceAllString(text, "@user")
	return linkRx.ReplaceAllString(text, "http")
}

// SplitSentences breaks text into sentences, keeping trailing punctuation. Blank fragments are
// dropped; text with no sentence content yields the whole text.
func SplitSentences(text string) []string {
	var out []string
	for _, s := range sentenceRx.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// ClassifierUnits returns the units a sentence classifier should see: the whole text when it is
// short, otherwise its sentences. Links are masked before splitting so their dots do not end a
// sentence.
func ClassifierUnits(text string) []string {
	clean := Preprocess(text)
	if len(text) > sentenceSplitThreshold {
		return SplitSentences(clean)
	}
	return []string{clean}
}

// ContainsBadWord reports whether any profanity-list entry occurs in s (substring match).
func ContainsBadWord(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range badWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Guard applies the toxicity and profanity downgrades to one classified sentence. HateSpeech
// only sticks when HateConfidence clears the toxicity threshold.
func Guard(d Detail) Detail {
	d.HateSpeech = d.HateSpeech && d.HateConfidence > toxicThreshold
	label := strings.ToLower(d.Sentiment)

	if d.HateSpeech && label == "positive" && d.Confidence < toxicPositiveCeiling {
		label, d.Confidence = "neutral", downgradedConfidence
	}

	d.BadWord = ContainsBadWord(d.Sentence)
	if d.BadWord {
		switch {
		case label == "positive" && d.Confidence < badWordPositiveCeiling:
			label, d.Confidence = "neutral", downgradedConfidence
		case label == "neutral":
			d.Confidence = math.Min(d.Confidence, badWordNeutralCeiling)
		}
	}

	d.Sentiment = label
	d.Confidence = math.Round(d.Confidence*1e4) / 1e4
	d.HateConfidence = math.Round(d.HateConfidence*1e4) / 1e4
	return d
}

// Aggregate builds the overall remote reply from guarded sentence details. The overall label is
// the strict majority, else neutral; its confidence is the mean confidence of sentences carrying
// that label.
func Aggregate(text string, details []Detail) RemoteResponse {
	counts := map[string]int{}
	hate := false
	for _, d := range details {
		counts[d.Sentiment]++
		hate = hate || d.HateSpeech
	}

	overall := "neutral"
	switch {
	case counts["positive"] > counts["negative"] && counts["positive"] > counts["neutral"]:
		overall = "positive"
	case counts["negative"] > counts["positive"] && counts["negative"] > counts["neutral"]:
		overall = "negative"
	}

	var sum float64
	var n int
	for _, d := range details {
		if d.Sentiment == overall {
			sum += d.Confidence
			n++
		}
	}
	conf := 0.0
	if n > 0 {
		conf = math.Round(sum/float64(n)*1e4) / 1e4
	}

	if details == nil {
		details = []Detail{}
	}
	return RemoteResponse{
		Text:       text,
		Sentiment:  overall,
		Confidence: conf,
		Details:    details,
		HateSpeech: hate,
	}
}

// ClassifierAnalyzer turns a SentenceClassifier into a RemoteAnalyzer.
type ClassifierAnalyzer struct {
	Classifier SentenceClassifier
}

func (a ClassifierAnalyzer) Analyze(ctx context.Context, text string) (RemoteResponse, error) {
	units := ClassifierUnits(text)
	details, err := a.Classifier.Classify(ctx, units)
	if err != nil {
		return RemoteResponse{}, err
	}
	if len(details) != len(units) {
		return RemoteResponse{}, fmt.Errorf("classifier returned %d labels for %d sentences", len(details), len(units))
	}
	for i := range details {
		details[i].Sentence = units[i]
		details[i] = Guard(details[i])
	}
	return Aggregate(text, details), nil
}
