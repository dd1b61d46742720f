package sentiment

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand returns n for every Intn call and f for every Float64 call.
type fixedRand struct {
	n int
	f float64
}

func (r fixedRand) Intn(int) int     { return r.n }
func (r fixedRand) Float64() float64 { return r.f }

func TestSimulate_Properties(t *testing.T) {
	texts := []string{
		"great amazing wonderful",
		"terrible awful horrible",
		"good bad",
		"the cat sat on the mat",
		"good good bad but the problem is worse",
		"",
	}
	sim := NewSimulator(rand.New(rand.NewSource(42)))

	for i := 0; i < 50; i++ {
		text := texts[i%len(texts)]
		r := sim.Simulate(text)

		require.NotNil(t, r.ValidatorCount)
		require.NotNil(t, r.ConsensusLevel)
		n := *r.ValidatorCount
		assert.GreaterOrEqual(t, n, MinValidators)
		assert.LessOrEqual(t, n, MaxValidators)

		// consensus level is a rounded multiple of 100/n
		votes := *r.ConsensusLevel * float64(n) / 100
		assert.InDelta(t, math.Round(votes), votes, 0.01, "text %q", text)
		assert.Equal(t, *r.ConsensusLevel, r.Confidence)
		assert.Contains(t, []Label{Positive, Negative, Neutral}, r.Sentiment)
		assert.Equal(t, ModelBlockchain, r.Model)
	}
}

func TestSimulate_UnanimousWhenPolarityIsClear(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(7)))

	r := sim.Simulate("great amazing wonderful")
	assert.Equal(t, Positive, r.Sentiment)
	assert.Equal(t, 100.0, *r.ConsensusLevel)

	r = sim.Simulate("terrible awful horrible")
	assert.Equal(t, Negative, r.Sentiment)
	assert.Equal(t, 100.0, *r.ConsensusLevel)

	r = sim.Simulate("")
	assert.Equal(t, Neutral, r.Sentiment)
	assert.Equal(t, 100.0, r.NeutralPercentage)
}

func TestSimulate_ZeroJitterReproducesBase(t *testing.T) {
	// Float64 of 0.5 means no jitter; Intn of 3 means 8 validators
	sim := NewSimulator(fixedRand{n: 3, f: 0.5})
	base := Score("good good bad")

	r := sim.Simulate("good good bad")
	assert.Equal(t, 8, *r.ValidatorCount)
	assert.Equal(t, base.PositivePercentage, r.PositivePercentage)
	assert.Equal(t, base.NegativePercentage, r.NegativePercentage)
	assert.Equal(t, base.NeutralPercentage, r.NeutralPercentage)
	assert.Equal(t, base.KeyTopics, r.KeyTopics)
	// 65 > 20+5 so every validator votes positive
	assert.Equal(t, Positive, r.Sentiment)
}

func TestSimulate_NeutralBaseStaysNeutral(t *testing.T) {
	sim := NewSimulator(fixedRand{n: 0, f: 0.5})
	r := sim.Simulate("good bad")
	assert.Equal(t, 5, *r.ValidatorCount)
	// 30/30/40: neither polarity clears neutral by the margin
	assert.Equal(t, Neutral, r.Sentiment)
}

func TestTally_TieBreaks(t *testing.T) {
	v := func(l Label) Vote { return Vote{Sentiment: l, NeutralPercentage: 100} }

	tests := []struct {
		name  string
		votes []Vote
		want  Label
		level float64
	}{
		{"positive wins tie with negative", []Vote{v(Positive), v(Positive), v(Negative), v(Negative), v(Neutral)}, Positive, 40},
		{"positive wins tie with neutral", []Vote{v(Positive), v(Neutral)}, Positive, 50},
		{"negative needs to beat positive", []Vote{v(Positive), v(Negative), v(Negative), v(Neutral), v(Neutral)}, Negative, 40},
		{"neutral majority", []Vote{v(Positive), v(Negative), v(Neutral), v(Neutral)}, Neutral, 50},
		{"positive behind neutral", []Vote{v(Positive), v(Positive), v(Neutral), v(Neutral), v(Neutral)}, Neutral, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Tally(tt.votes, nil)
			assert.Equal(t, tt.want, r.Sentiment)
			assert.Equal(t, tt.level, *r.ConsensusLevel)
			assert.Equal(t, len(tt.votes), *r.ValidatorCount)
			assert.NotNil(t, r.KeyTopics)
		})
	}
}

func TestTally_AveragesAreNotRenormalized(t *testing.T) {
	votes := []Vote{
		{Sentiment: Positive, PositivePercentage: 33.33, NegativePercentage: 33.33, NeutralPercentage: 33.34},
		{Sentiment: Positive, PositivePercentage: 33.36, NegativePercentage: 33.36, NeutralPercentage: 33.28},
	}
	r := Tally(votes, []string{"General"})
	assert.Equal(t, 33.3, r.PositivePercentage)
	assert.Equal(t, 33.3, r.NegativePercentage)
	assert.Equal(t, 33.3, r.NeutralPercentage)
	assert.InDelta(t, 99.9, r.Sum(), 0.0001)
}

func TestLockedRand(t *testing.T) {
	r := NewSeededRand(1)
	for i := 0; i < 100; i++ {
		n := r.Intn(6)
		assert.True(t, n >= 0 && n < 6)
		f := r.Float64()
		assert.True(t, f >= 0 && f < 1)
	}
}
