package analysis

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

// RemoteAnalyze serves the advanced backend contract directly: text wins over
// url, a url is fetched and its first 512 characters analyzed. Nothing is
// recorded as current or in history.
func (s *Service) RemoteAnalyze(ctx context.Context, text, rawURL string) (sentiment.RemoteResponse, error) {
	if s.Remote == nil {
		return sentiment.RemoteResponse{}, ErrAdvancedUnavailable
	}
	text = strings.TrimSpace(text)
	rawURL = strings.TrimSpace(rawURL)
	if rawURL != "" {
		if err := validateURL(rawURL); err != nil {
			return sentiment.RemoteResponse{}, err
		}
	}
	switch {
	case text != "":
	case rawURL != "":
		if s.Fetcher == nil {
			return sentiment.RemoteResponse{}, &sentiment.TransportError{Op: "fetch url", Err: fmt.Errorf("fetcher not configured")}
		}
		fetched, err := s.Fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return sentiment.RemoteResponse{}, &sentiment.TransportError{Op: "fetch url", Err: err}
		}
		text = fetched
	default:
		return sentiment.RemoteResponse{}, sentiment.NewInputError("no input provided (send 'file', 'text', or 'url')")
	}
	return s.remote(ctx, text)
}

// RemoteBatch runs the remote analyzer over the "text" column of a CSV
// document, keeping input order.
func (s *Service) RemoteBatch(ctx context.Context, r io.Reader) ([]sentiment.RemoteResponse, error) {
	if s.Remote == nil {
		return nil, ErrAdvancedUnavailable
	}
	texts, err := ReadTextColumn(r)
	if err != nil {
		return nil, err
	}
	out := make([]sentiment.RemoteResponse, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}
	g.SetLimit(limit)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			resp, err := s.remote(gctx, text)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) remote(ctx context.Context, text string) (sentiment.RemoteResponse, error) {
	resp, err := s.Remote.Analyze(ctx, text)
	if err != nil {
		s.logger().Warn("remote analyze failed", "err", err)
		if sentiment.IsTransport(err) {
			return sentiment.RemoteResponse{}, err
		}
		return sentiment.RemoteResponse{}, &sentiment.TransportError{Op: "remote analyze", Err: err}
	}
	if resp.Details == nil {
		resp.Details = []sentiment.Detail{}
	}
	return resp, nil
}
