package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/sentichain/internal/application"
	apphistory "github.com/bryanwahyu/sentichain/internal/application/history"
	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type recordSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *recordSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.slept = append(r.slept, d)
	r.mu.Unlock()
	return ctx.Err()
}

type fixedRand struct{ f float64 }

func (r fixedRand) Intn(int) int     { return 0 }
func (r fixedRand) Float64() float64 { return r.f }

type stubFetcher struct {
	text string
	err  error
	url  string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.url = url
	return f.text, f.err
}

type stubRemote struct {
	resp sentiment.RemoteResponse
	err  error
	got  string
}

func (r *stubRemote) Analyze(_ context.Context, text string) (sentiment.RemoteResponse, error) {
	r.got = text
	return r.resp, r.err
}

type stubChain struct {
	ref     chain.TxRef
	err     error
	records []chain.AnalysisRecord
}

func (c *stubChain) Connect(context.Context) (chain.Account, error) { return chain.Account{}, nil }
func (c *stubChain) Account(context.Context) (chain.Account, bool)  { return chain.Account{}, true }
func (c *stubChain) StoreAnalysis(_ context.Context, rec chain.AnalysisRecord) (chain.TxRef, error) {
	c.records = append(c.records, rec)
	return c.ref, c.err
}
func (c *stubChain) CreateListing(context.Context, chain.ListingRecord) (chain.TxRef, error) {
	return c.ref, c.err
}
func (c *stubChain) Purchase(context.Context, string, float64) (chain.TxRef, error) {
	return c.ref, c.err
}

func newService() (*Service, *recordSleeper) {
	sl := &recordSleeper{}
	return &Service{
		Simulator: sentiment.NewSimulator(fixedRand{f: 0.5}),
		History:   apphistory.NewStore(nil, 0, 0, nil),
		Clock:     &stepClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), step: 250 * time.Millisecond},
		Sleeper:   sl,
		Rand:      fixedRand{f: 0.5},
		Delays:    DefaultDelays,
	}, sl
}

func TestAnalyze_RejectsEmptyInput(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Analyze(context.Background(), Request{Text: "   "})
	assert.True(t, sentiment.IsInput(err))

	_, err = svc.Analyze(context.Background(), Request{URL: "not a url"})
	assert.True(t, sentiment.IsInput(err))

	_, err = svc.Analyze(context.Background(), Request{URL: "ftp://example.com/file"})
	assert.True(t, sentiment.IsInput(err))

	// text present, url still checked
	_, err = svc.Analyze(context.Background(), Request{Text: "great day", URL: "not a url"})
	assert.True(t, sentiment.IsInput(err))

	_, ok := svc.Current()
	assert.False(t, ok)
	assert.Zero(t, svc.History.Len())
}

func TestAnalyze_BasicRecordsCurrentAndHistory(t *testing.T) {
	svc, sl := newService()

	out, err := svc.Analyze(context.Background(), Request{Text: "great amazing wonderful", Model: "basic"})
	require.NoError(t, err)

	assert.Equal(t, sentiment.Positive, out.Entry.Results.Sentiment)
	assert.Equal(t, sentiment.ModelBasic, out.Entry.Model)
	assert.Equal(t, 250*time.Millisecond, out.Elapsed)
	assert.Empty(t, out.Warnings)
	assert.NotEmpty(t, out.Entry.ID)
	assert.Equal(t, []time.Duration{750 * time.Millisecond}, sl.slept)

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, out.Entry.ID, cur.ID)

	h, err := svc.History.Get(0)
	require.NoError(t, err)
	assert.Equal(t, out.Entry.ID, h.ID)
	assert.Equal(t, "great amazing wonderful", h.Text)
}

func TestAnalyze_UnknownModelFallsBackToBasic(t *testing.T) {
	svc, _ := newService()
	out, err := svc.Analyze(context.Background(), Request{Text: "good", Model: "transformer"})
	require.NoError(t, err)
	assert.Equal(t, sentiment.ModelBasic, out.Entry.Model)
}

func TestAnalyze_ConsensusUsesLongerDelay(t *testing.T) {
	svc, sl := newService()
	out, err := svc.Analyze(context.Background(), Request{Text: "good good bad", Model: sentiment.ModelBlockchain})
	require.NoError(t, err)

	require.NotNil(t, out.Entry.Results.ValidatorCount)
	assert.Equal(t, 5, *out.Entry.Results.ValidatorCount)
	assert.Equal(t, []time.Duration{2000 * time.Millisecond}, sl.slept)
}

func TestAnalyze_KeywordFilter(t *testing.T) {
	svc, _ := newService()
	text := "Bitcoin is great. The weather is terrible."

	out, err := svc.Analyze(context.Background(), Request{Text: text, Keyword: "bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, sentiment.Positive, out.Entry.Results.Sentiment)
	assert.Equal(t, text, out.Entry.Text)
	assert.Equal(t, "bitcoin", out.Entry.Keyword)
	assert.Empty(t, out.Warnings)

	out, err = svc.Analyze(context.Background(), Request{Text: text, Keyword: "ethereum"})
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "ethereum")
	assert.Equal(t, sentiment.Neutral, out.Entry.Results.Sentiment)
}

func TestAnalyze_FetchesURLWhenTextEmpty(t *testing.T) {
	svc, _ := newService()
	f := &stubFetcher{text: "  markets rally on strong gains  "}
	svc.Fetcher = f

	out, err := svc.Analyze(context.Background(), Request{URL: "https://news.example.com/a"})
	require.NoError(t, err)
	assert.Equal(t, "https://news.example.com/a", f.url)
	assert.Equal(t, "markets rally on strong gains", out.Entry.Text)

	f.err = errors.New("timeout")
	_, err = svc.Analyze(context.Background(), Request{URL: "https://news.example.com/b"})
	assert.True(t, sentiment.IsTransport(err))
}

func TestAnalyze_AdvancedRemote(t *testing.T) {
	svc, sl := newService()

	out, err := svc.Analyze(context.Background(), Request{Text: "hello", Model: sentiment.ModelAdvanced})
	require.NoError(t, err)
	assert.Equal(t, sentiment.Error, out.Entry.Results.Sentiment)
	assert.Equal(t, ErrAdvancedUnavailable.Error(), out.Entry.Results.Error)

	remote := &stubRemote{resp: sentiment.RemoteResponse{
		Sentiment:  "negative",
		Confidence: 0.8,
		Details:    []sentiment.Detail{{Sentiment: "negative"}, {Sentiment: "neutral"}},
	}}
	svc.Remote = remote
	out, err = svc.Analyze(context.Background(), Request{Text: "it broke", Model: sentiment.ModelAdvanced})
	require.NoError(t, err)
	assert.Equal(t, "it broke", remote.got)
	assert.Equal(t, sentiment.Negative, out.Entry.Results.Sentiment)
	assert.Equal(t, 50.0, out.Entry.Results.NegativePercentage)

	remote.err = &sentiment.TransportError{Op: "remote analyze", Err: errors.New("status 500")}
	out, err = svc.Analyze(context.Background(), Request{Text: "it broke again", Model: sentiment.ModelAdvanced})
	require.NoError(t, err)
	assert.Equal(t, sentiment.Error, out.Entry.Results.Sentiment)
	assert.Contains(t, out.Entry.Results.Error, "status 500")

	// the remote path has real latency, no simulated delay
	assert.Empty(t, sl.slept)
	assert.Equal(t, 3, svc.History.Len())
}

func TestAnalyze_CancelledDuringDelay(t *testing.T) {
	svc, _ := newService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Analyze(ctx, Request{Text: "good"})
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestAnalyze_LongTextSnippet(t *testing.T) {
	svc, _ := newService()
	out, err := svc.Analyze(context.Background(), Request{Text: strings.Repeat("good ", 400)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.Entry.Text, "..."))
	assert.Len(t, []rune(out.Entry.Text), 1003)
}

func TestReanalyze(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Reanalyze(context.Background(), 0)
	assert.ErrorIs(t, err, sentiment.ErrNotFound)

	_, err = svc.Analyze(context.Background(), Request{Text: "terrible awful", Model: sentiment.ModelBlockchain, Keyword: "awful"})
	require.NoError(t, err)

	out, err := svc.Reanalyze(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, sentiment.ModelBlockchain, out.Entry.Model)
	assert.Equal(t, "awful", out.Entry.Keyword)
	assert.Equal(t, sentiment.Negative, out.Entry.Results.Sentiment)
	assert.Equal(t, 2, svc.History.Len())
}

func TestStoreOnChain(t *testing.T) {
	svc, _ := newService()
	_, err := svc.StoreOnChain(context.Background())
	assert.ErrorIs(t, err, chain.ErrUnavailable)

	c := &stubChain{ref: chain.TxRef{Hash: "0xfeed", Timestamp: time.Unix(100, 0).UTC()}}
	svc.Chain = c
	_, err = svc.StoreOnChain(context.Background())
	assert.True(t, sentiment.IsInput(err))

	out, err := svc.Analyze(context.Background(), Request{Text: "good news for bitcoin"})
	require.NoError(t, err)

	ref, err := svc.StoreOnChain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", ref.Hash)
	require.Len(t, c.records, 1)
	assert.Equal(t, "Positive", c.records[0].Sentiment)
	assert.Equal(t, "basic", c.records[0].Model)

	cur, _ := svc.Current()
	require.NotNil(t, cur.BlockchainData)
	assert.Equal(t, "0xfeed", cur.BlockchainData.Hash)

	h, err := svc.History.Get(0)
	require.NoError(t, err)
	assert.Equal(t, out.Entry.ID, h.ID)
	require.NotNil(t, h.BlockchainData)
	assert.Equal(t, "0xfeed", h.BlockchainData.Hash)

	c.err = chain.ErrWalletNotConnected
	_, err = svc.StoreOnChain(context.Background())
	assert.ErrorIs(t, err, chain.ErrWalletNotConnected)
}

func TestScore_SkipsLatencyAndState(t *testing.T) {
	svc, sl := newService()
	r, err := svc.Score(context.Background(), "great", sentiment.ModelBasic)
	require.NoError(t, err)
	assert.Equal(t, sentiment.Positive, r.Sentiment)
	assert.Empty(t, sl.slept)
	_, ok := svc.Current()
	assert.False(t, ok)
}

var _ application.Sleeper = (*recordSleeper)(nil)
