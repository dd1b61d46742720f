package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRemote_CountsDetailLabels(t *testing.T) {
	resp := RemoteResponse{
		Sentiment:  "positive",
		Confidence: 0.9123,
		HateSpeech: true,
		Details: []Detail{
			{Sentiment: "positive"},
			{Sentiment: "positive"},
			{Sentiment: "negative"},
			{Sentiment: "neutral"},
		},
	}
	r := FromRemote("bitcoin wallet", resp)

	assert.Equal(t, Positive, r.Sentiment)
	assert.InDelta(t, 91.23, r.Confidence, 1e-9)
	assert.Equal(t, 50.0, r.PositivePercentage)
	assert.Equal(t, 25.0, r.NegativePercentage)
	assert.Equal(t, 25.0, r.NeutralPercentage)
	assert.Equal(t, []string{"Blockchain/Crypto"}, r.KeyTopics)
	require.NotNil(t, r.HateSpeech)
	assert.True(t, *r.HateSpeech)
	assert.Equal(t, ModelAdvanced, r.Model)
}

func TestFromRemote_NoDetails(t *testing.T) {
	r := FromRemote("x", RemoteResponse{})
	assert.Equal(t, Neutral, r.Sentiment)
	assert.Equal(t, 100.0, r.NeutralPercentage)
	assert.InDelta(t, 100, r.Sum(), 0.1)
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name     string
		in       Detail
		wantSent string
		wantConf float64
		wantHate bool
		wantBad  bool
	}{
		{
			name:     "toxic weak positive becomes neutral",
			in:       Detail{Sentence: "you are great", Sentiment: "positive", Confidence: 0.8, HateSpeech: true, HateConfidence: 0.9},
			wantSent: "neutral", wantConf: 0.6, wantHate: true,
		},
		{
			name:     "toxic strong positive stays",
			in:       Detail{Sentence: "you are great", Sentiment: "positive", Confidence: 0.9, HateSpeech: true, HateConfidence: 0.9},
			wantSent: "positive", wantConf: 0.9, wantHate: true,
		},
		{
			name:     "low toxicity confidence is not hate speech",
			in:       Detail{Sentence: "hmm", Sentiment: "Positive", Confidence: 0.8, HateSpeech: true, HateConfidence: 0.7},
			wantSent: "positive", wantConf: 0.8,
		},
		{
			name:     "bad word weak positive becomes neutral",
			in:       Detail{Sentence: "that was a stupid good movie", Sentiment: "positive", Confidence: 0.7},
			wantSent: "neutral", wantConf: 0.6, wantBad: true,
		},
		{
			name:     "bad word caps neutral confidence",
			in:       Detail{Sentence: "what garbage", Sentiment: "neutral", Confidence: 0.9},
			wantSent: "neutral", wantConf: 0.5, wantBad: true,
		},
		{
			name:     "bad word negative untouched",
			in:       Detail{Sentence: "idiot", Sentiment: "negative", Confidence: 0.97771},
			wantSent: "negative", wantConf: 0.9777, wantBad: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Guard(tt.in)
			assert.Equal(t, tt.wantSent, d.Sentiment)
			assert.InDelta(t, tt.wantConf, d.Confidence, 1e-9)
			assert.Equal(t, tt.wantHate, d.HateSpeech)
			assert.Equal(t, tt.wantBad, d.BadWord)
		})
	}
}

func TestAggregate(t *testing.T) {
	details := []Detail{
		{Sentiment: "positive", Confidence: 0.9},
		{Sentiment: "positive", Confidence: 0.8},
		{Sentiment: "negative", Confidence: 0.99, HateSpeech: true},
	}
	resp := Aggregate("text", details)
	assert.Equal(t, "positive", resp.Sentiment)
	assert.InDelta(t, 0.85, resp.Confidence, 1e-9)
	assert.True(t, resp.HateSpeech)

	// no strict majority
	resp = Aggregate("text", []Detail{{Sentiment: "positive", Confidence: 0.9}, {Sentiment: "negative", Confidence: 0.9}})
	assert.Equal(t, "neutral", resp.Sentiment)
	assert.Zero(t, resp.Confidence)

	resp = Aggregate("", nil)
	assert.Equal(t, "neutral", resp.Sentiment)
	assert.NotNil(t, resp.Details)
}

type stubClassifier struct {
	labels []string
	err    error
	got    []string
}

func (s *stubClassifier) Classify(_ context.Context, units []string) ([]Detail, error) {
	s.got = units
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Detail, 0, len(s.labels))
	for _, l := range s.labels {
		out = append(out, Detail{Sentiment: l, Confidence: 0.9})
	}
	return out, nil
}

func TestClassifierAnalyzer(t *testing.T) {
	long := "The launch went well and users love it. " +
		"Support from @alice at https://example.com/x was slow though. " +
		"Overall a solid release for the team."
	require.Greater(t, len(long), 100)

	cls := &stubClassifier{labels: []string{"positive", "negative", "positive"}}
	resp, err := ClassifierAnalyzer{Classifier: cls}.Analyze(context.Background(), long)
	require.NoError(t, err)

	require.Len(t, cls.got, 3)
	assert.True(t, strings.Contains(cls.got[1], "@user"))
	assert.True(t, strings.Contains(cls.got[1], "http was slow"))
	assert.Equal(t, "positive", resp.Sentiment)
	assert.Equal(t, long, resp.Text)
	assert.Equal(t, cls.got[0], resp.Details[0].Sentence)

	// short text is classified whole
	cls = &stubClassifier{labels: []string{"neutral"}}
	_, err = ClassifierAnalyzer{Classifier: cls}.Analyze(context.Background(), "fine. ok.")
	require.NoError(t, err)
	assert.Equal(t, []string{"fine. ok."}, cls.got)

	// label count mismatch
	cls = &stubClassifier{labels: []string{"neutral", "neutral"}}
	_, err = ClassifierAnalyzer{Classifier: cls}.Analyze(context.Background(), "fine")
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = ClassifierAnalyzer{Classifier: &stubClassifier{err: boom}}.Analyze(context.Background(), "fine")
	assert.ErrorIs(t, err, boom)
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", "Two!", "Three?", "four"}, SplitSentences("One. Two! Three? four"))
	assert.Equal(t, []string{"..."}, SplitSentences("..."))
}

func TestErrors(t *testing.T) {
	err := NewInputError("missing %s", "text")
	assert.True(t, IsInput(err))
	assert.EqualError(t, err, "missing text")

	base := errors.New("dial tcp: refused")
	terr := &TransportError{Op: "remote analyze", Err: base}
	assert.True(t, IsTransport(terr))
	assert.ErrorIs(t, terr, base)
	assert.False(t, IsTransport(err))

	perr := &PersistenceError{Op: "save history", Err: base}
	assert.ErrorIs(t, perr, base)
	assert.Equal(t, "save history: dial tcp: refused", perr.Error())
}
