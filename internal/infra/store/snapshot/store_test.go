package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/history"
	"github.com/bryanwahyu/sentichain/internal/domain/marketplace"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

func TestHistory_SaveReloadKeepsFields(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	got, err := s.History().Load(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	ts := time.Date(2025, 6, 1, 8, 30, 0, 123456789, time.UTC)
	in := []*history.Entry{{
		ID:             "e1",
		Text:           "Investors remain optimistic",
		Results:        sentiment.Score("Investors remain optimistic"),
		Timestamp:      ts,
		Model:          sentiment.ModelBasic,
		Keyword:        "investors",
		BlockchainData: &chain.TxRef{Hash: "0x01", Timestamp: ts},
	}}
	require.NoError(t, s.History().Replace(ctx, in))

	reopened, err := Open(dir)
	require.NoError(t, err)
	out, err := reopened.History().Load(ctx, 30)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Results.Sentiment, out[0].Results.Sentiment)
	assert.Equal(t, in[0].Results.Confidence, out[0].Results.Confidence)
	assert.Equal(t, in[0].Text, out[0].Text)
	assert.True(t, ts.Equal(out[0].Timestamp))
	assert.Equal(t, "0x01", out[0].BlockchainData.Hash)
}

func TestHistory_LoadLimitAndCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	var in []*history.Entry
	for i := 0; i < 5; i++ {
		in = append(in, &history.Entry{ID: history.EntryID(rune('a' + i)), Text: "x", Results: sentiment.Score("x")})
	}
	require.NoError(t, s.History().Replace(ctx, in))
	out, err := s.History().Load(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	require.NoError(t, os.WriteFile(filepath.Join(dir, HistoryFile), []byte("{not json"), 0o644))
	_, err = s.History().Load(ctx, 0)
	assert.Error(t, err)
}

func TestListings_SkipDemo(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	in := []*marketplace.Listing{
		{ID: "demo-1", Title: "demo", Price: 2, Category: "finance", Sentiment: "Positive"},
		{ID: "listed-1", Title: "mine", Price: 3, Category: "general", Sentiment: "Neutral", IsSold: true},
	}
	require.NoError(t, s.Listings().Replace(ctx, in))

	out, err := s.Listings().Load(ctx, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, marketplace.ListingID("listed-1"), out[0].ID)
	assert.True(t, out[0].IsSold)

	require.NoError(t, s.Listings().Replace(ctx, nil))
	out, err = s.Listings().Load(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, s.Ping(ctx))
}
