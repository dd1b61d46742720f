package sentiment

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	MinValidators = 5
	MaxValidators = 10

	jitterSpread = 0.3 // +/- 15%
	voteMargin   = 5.0
)

// Rand is the randomness the consensus simulation needs. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// LockedRand makes a Rand safe for concurrent use.
type LockedRand struct {
	mu  sync.Mutex
	src Rand
}

func NewLockedRand(src Rand) *LockedRand { return &LockedRand{src: src} }

// NewSeededRand returns a LockedRand over math/rand seeded with seed, or the wall clock when seed
// is zero.
func NewSeededRand(seed int64) *LockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewLockedRand(rand.New(rand.NewSource(seed)))
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

// Simulator runs the multi-validator consensus heuristic.
type Simulator struct {
	Rand Rand
}

func NewSimulator(r Rand) *Simulator { return &Simulator{Rand: r} }

// Simulate scores text with 5..10 jittered validators and returns the majority sentiment,
// averaged percentages and the share of validators that agreed. It never fails.
func (s *Simulator) Simulate(text string) Result {
	n := MinValidators + s.Rand.Intn(MaxValidators-MinValidators+1)
	base := Score(text)

	votes := make([]Vote, n)
	for i := range votes {
		votes[i] = s.vote(base)
	}
	return Tally(votes, base.KeyTopics)
}

// vote applies independent multiplicative jitter to the base percentages.
func (s *Simulator) vote(base Result) Vote {
	posVar := (s.Rand.Float64() - 0.5) * jitterSpread
	negVar := (s.Rand.Float64() - 0.5) * jitterSpread

	pos := clamp(base.PositivePercentage*(1+posVar), 0, 100)
	neg := clamp(base.NegativePercentage*(1+negVar), 0, 100)
	neu := math.Max(0, 100-pos-neg)
	pos, neg, neu = normalize(pos, neg, neu)

	return Vote{
		Sentiment:          classifyVote(pos, neg, neu),
		PositivePercentage: pos,
		NegativePercentage: neg,
		NeutralPercentage:  neu,
	}
}

func classifyVote(pos, neg, neu float64) Label {
	switch {
	case pos > neg && pos > neu+voteMargin:
		return Positive
	case neg > pos && neg > neu+voteMargin:
		return Negative
	default:
		return Neutral
	}
}

// Tally aggregates validator votes. Positive wins ties with Negative and Neutral; Negative wins
// only when strictly ahead of Positive and not behind Neutral. Averages are plain means and are
// not re-normalized.
func Tally(votes []Vote, topics []string) Result {
	n := len(votes)
	if n == 0 {
		return Result{Sentiment: Neutral, NeutralPercentage: 100, KeyTopics: topics}
	}

	counts := map[Label]int{}
	var totalPos, totalNeg, totalNeu float64
	for _, v := range votes {
		counts[v.Sentiment]++
		totalPos += v.PositivePercentage
		totalNeg += v.NegativePercentage
		totalNeu += v.NeutralPercentage
	}

	winner := Neutral
	switch {
	case counts[Positive] >= counts[Negative] && counts[Positive] >= counts[Neutral]:
		winner = Positive
	case counts[Negative] > counts[Positive] && counts[Negative] >= counts[Neutral]:
		winner = Negative
	}

	level := round1(float64(counts[winner]) / float64(n) * 100)
	if topics == nil {
		topics = []string{}
	}
	return Result{
		Sentiment:          winner,
		Confidence:         level,
		PositivePercentage: round1(totalPos / float64(n)),
		NegativePercentage: round1(totalNeg / float64(n)),
		NeutralPercentage:  round1(totalNeu / float64(n)),
		KeyTopics:          topics,
		ConsensusLevel:     &level,
		ValidatorCount:     &n,
		Model:              ModelBlockchain,
	}
}
