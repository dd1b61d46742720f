package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/sentichain/internal/application"
	apphistory "github.com/bryanwahyu/sentichain/internal/application/history"
	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/history"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

// ErrAdvancedUnavailable is carried by the Error result when no remote analyzer is configured.
var ErrAdvancedUnavailable = errors.New("advanced analyzer not configured")

// Delays for the simulated latency of the local scorers.
type Delays struct {
	Basic     application.Range
	Consensus application.Range
}

// DefaultDelays match the latency the demo front end shows.
var DefaultDelays = Delays{
	Basic:     application.Range{Min: 500 * time.Millisecond, Max: 1000 * time.Millisecond},
	Consensus: application.Range{Min: 1500 * time.Millisecond, Max: 2500 * time.Millisecond},
}

// Service runs the analysis pipeline and owns the current-result slot.
// Service is safe for concurrent use; the current slot is last-write-wins.
type Service struct {
	Remote    sentiment.RemoteAnalyzer // optional
	Fetcher   sentiment.Fetcher
	Simulator *sentiment.Simulator
	History   *apphistory.Store
	Chain     chain.Client // optional, nil = disabled
	Clock     application.Clock
	Sleeper   application.Sleeper
	Rand      sentiment.Rand
	Delays    Delays
	Log       *slog.Logger

	// BatchConcurrency bounds the number of rows scored at once.
	BatchConcurrency int

	mu      sync.RWMutex
	current *history.Entry
}

// Request is one analysis submission.
type Request struct {
	Text    string          `json:"text"`
	URL     string          `json:"url"`
	Keyword string          `json:"keyword"`
	Model   sentiment.Model `json:"model"`
}

// Outcome of Analyze.
type Outcome struct {
	Entry    history.Entry `json:"entry"`
	Elapsed  time.Duration `json:"-"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Analyze validates the request, resolves its text (fetching the URL when needed),
// applies the keyword filter, scores with the chosen model and records the result
// as current and in history.
//
// Remote analyzer failures do not fail the call: they yield an Error-sentiment result.
func (s *Service) Analyze(ctx context.Context, req Request) (Outcome, error) {
	text := strings.TrimSpace(req.Text)
	rawURL := strings.TrimSpace(req.URL)
	if text == "" && rawURL == "" {
		return Outcome{}, sentiment.NewInputError("please enter text or a URL to analyze")
	}
	// a malformed url is rejected even when text wins
	if rawURL != "" {
		if err := validateURL(rawURL); err != nil {
			return Outcome{}, err
		}
	}
	if text == "" {
		if s.Fetcher == nil {
			return Outcome{}, &sentiment.TransportError{Op: "fetch url", Err: errors.New("fetcher not configured")}
		}
		fetched, err := s.Fetcher.Fetch(ctx, rawURL)
		if err != nil {
			s.logger().Warn("fetch url failed", "url", rawURL, "err", err)
			return Outcome{}, &sentiment.TransportError{Op: "fetch url", Err: err}
		}
		text = strings.TrimSpace(fetched)
		if text == "" {
			return Outcome{}, sentiment.NewInputError("no readable text at %s", rawURL)
		}
	}

	var warnings []string
	keyword := strings.TrimSpace(req.Keyword)
	analyzed := text
	if keyword != "" {
		filtered, ok := sentiment.FilterByKeyword(text, keyword)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("keyword %q not found, analyzing full text", keyword))
		}
		analyzed = filtered
	}

	model := sentiment.ParseModel(string(req.Model))
	start := s.clock().Now()
	result, err := s.run(ctx, analyzed, model, true)
	if err != nil {
		return Outcome{}, err
	}
	now := s.clock().Now()

	entry := &history.Entry{
		ID:        history.EntryID(uuid.NewString()),
		Text:      sentiment.Snippet(text),
		Results:   result,
		Timestamp: now,
		Model:     model,
		Keyword:   keyword,
	}
	s.setCurrent(entry)

	if s.History != nil {
		stored := *entry
		if _, err := s.History.Add(ctx, &stored); err != nil {
			warnings = append(warnings, "history could not be saved: "+err.Error())
		}
	}

	s.logger().Info("analysis done",
		"model", model,
		"sentiment", result.Sentiment,
		"confidence", result.Confidence,
		"elapsed_ms", now.Sub(start).Milliseconds(),
	)
	return Outcome{Entry: *entry, Elapsed: now.Sub(start), Warnings: warnings}, nil
}

// Reanalyze re-runs the history entry at index with its stored text, model and keyword.
func (s *Service) Reanalyze(ctx context.Context, index int) (Outcome, error) {
	if s.History == nil {
		return Outcome{}, sentiment.ErrNotFound
	}
	e, err := s.History.Get(index)
	if err != nil {
		return Outcome{}, fmt.Errorf("history entry %d: %w", index, err)
	}
	return s.Analyze(ctx, Request{Text: e.Text, Keyword: e.Keyword, Model: e.Model})
}

// Score runs a single model without touching the current slot or history.
// Simulated latency is skipped.
func (s *Service) Score(ctx context.Context, text string, model sentiment.Model) (sentiment.Result, error) {
	return s.run(ctx, text, sentiment.ParseModel(string(model)), false)
}

// Current returns a copy of the current result, if any.
func (s *Service) Current() (history.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return history.Entry{}, false
	}
	return *s.current, true
}

// StoreOnChain writes the current result to the ledger and attaches the
// returned reference to the current result and its history entry.
func (s *Service) StoreOnChain(ctx context.Context) (chain.TxRef, error) {
	if s.Chain == nil {
		return chain.TxRef{}, chain.ErrUnavailable
	}
	cur, ok := s.Current()
	if !ok {
		return chain.TxRef{}, sentiment.NewInputError("please perform an analysis first")
	}
	if cur.Results.Sentiment == sentiment.Error {
		return chain.TxRef{}, sentiment.NewInputError("cannot store a failed analysis")
	}
	r := cur.Results
	ref, err := s.Chain.StoreAnalysis(ctx, chain.AnalysisRecord{
		Text:               cur.Text,
		Sentiment:          string(r.Sentiment),
		Confidence:         r.Confidence,
		PositivePercentage: r.PositivePercentage,
		NegativePercentage: r.NegativePercentage,
		NeutralPercentage:  r.NeutralPercentage,
		KeyTopics:          r.KeyTopics,
		Model:              string(cur.Model),
	})
	if err != nil {
		return chain.TxRef{}, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == cur.ID {
		attached := ref
		s.current.BlockchainData = &attached
	}
	s.mu.Unlock()

	if s.History != nil {
		if err := s.History.AttachTx(ctx, cur.ID, ref); err != nil && !errors.Is(err, sentiment.ErrNotFound) {
			s.logger().Warn("attach tx to history failed", "id", cur.ID, "err", err)
		}
	}
	s.logger().Info("analysis stored on chain", "id", cur.ID, "tx", ref.Hash)
	return ref, nil
}

func (s *Service) run(ctx context.Context, text string, model sentiment.Model, simulateLatency bool) (sentiment.Result, error) {
	switch model {
	case sentiment.ModelAdvanced:
		if s.Remote == nil {
			return s.errorResult(ErrAdvancedUnavailable), nil
		}
		resp, err := s.Remote.Analyze(ctx, text)
		if err != nil {
			s.logger().Warn("remote analyze failed", "err", err)
			return s.errorResult(err), nil
		}
		return sentiment.FromRemote(text, resp), nil
	case sentiment.ModelBlockchain:
		if simulateLatency {
			if err := s.pause(ctx, s.Delays.Consensus); err != nil {
				return sentiment.Result{}, err
			}
		}
		return s.simulator().Simulate(text), nil
	default:
		if simulateLatency {
			if err := s.pause(ctx, s.Delays.Basic); err != nil {
				return sentiment.Result{}, err
			}
		}
		return sentiment.Score(text), nil
	}
}

func (s *Service) errorResult(err error) sentiment.Result {
	r := sentiment.ErrorResult(err)
	r.Model = sentiment.ModelAdvanced
	return r
}

func (s *Service) pause(ctx context.Context, r application.Range) error {
	if s.Sleeper == nil {
		return nil
	}
	f := 0.0
	if s.Rand != nil {
		f = s.Rand.Float64()
	}
	return s.Sleeper.Sleep(ctx, r.Pick(f))
}

func (s *Service) setCurrent(e *history.Entry) {
	s.mu.Lock()
	s.current = e
	s.mu.Unlock()
}

func (s *Service) simulator() *sentiment.Simulator {
	if s.Simulator != nil {
		return s.Simulator
	}
	return sentiment.NewSimulator(sentiment.NewSeededRand(time.Now().UnixNano()))
}

func (s *Service) clock() application.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return application.SystemClock{}
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return sentiment.NewInputError("please enter a valid URL")
	}
	return nil
}
