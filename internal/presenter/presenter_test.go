package presenter

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

func TestPresent_Summary(t *testing.T) {
	r := sentiment.Score("great amazing wonderful")
	v := Present(r, 742600*time.Microsecond)

	assert.Equal(t, "Positive", v.Sentiment)
	assert.Equal(t, "positive", v.Class)
	assert.Equal(t, "73.9%", v.Confidence)
	assert.Equal(t, "743ms", v.Time)
	assert.Equal(t, "95.0%", v.Positive)
	assert.Equal(t, [3]int{1, 0, 0}, v.Chart.Data)
	assert.Equal(t, ChartLabels, v.Chart.Labels)
}

func TestPresent_IsIdempotent(t *testing.T) {
	level, n := 80.0, 5
	r := sentiment.Result{
		Sentiment: sentiment.Negative, Confidence: 80, NegativePercentage: 70, NeutralPercentage: 30,
		KeyTopics: []string{"Finance/Markets"}, ConsensusLevel: &level, ValidatorCount: &n,
	}
	a := Present(r, time.Second)
	b := Present(r, time.Second)
	assert.Equal(t, a, b)
	assert.Equal(t, "80.0%", a.Consensus)
	assert.Equal(t, 5, a.Validators)

	var out1, out2 bytes.Buffer
	require.NoError(t, Render(&out1, a))
	require.NoError(t, Render(&out2, b))
	assert.Equal(t, out1.String(), out2.String())
	assert.Contains(t, out1.String(), "80.0% of 5 validators")
}

func TestPresent_ChartFromDetails(t *testing.T) {
	hate := true
	r := sentiment.Result{
		Sentiment:  sentiment.Positive,
		HateSpeech: &hate,
		Details: []sentiment.Detail{
			{Sentiment: "positive"}, {Sentiment: "positive"}, {Sentiment: "negative"},
			{Sentiment: "neutral"}, {Sentiment: ""},
		},
	}
	v := Present(r, 0)
	assert.Equal(t, [3]int{2, 1, 1}, v.Chart.Data)
	assert.True(t, v.HateSpeech)
	assert.Equal(t, "0ms", v.Time)
}

func TestPresent_Error(t *testing.T) {
	v := Present(sentiment.ErrorResult(errors.New("status 500")), 10*time.Millisecond)
	assert.Equal(t, "Error", v.Sentiment)
	assert.Equal(t, "error", v.Class)
	assert.Equal(t, "N/A%", v.Confidence)
	assert.Equal(t, [3]int{0, 0, 0}, v.Chart.Data)
	assert.Equal(t, "status 500", v.Error)

	var out bytes.Buffer
	require.NoError(t, Render(&out, v))
	assert.Contains(t, out.String(), "Error:      status 500")
}
