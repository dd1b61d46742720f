package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

// echoRemote labels text by its first word and is safe for concurrent use.
type echoRemote struct{}

func (echoRemote) Analyze(_ context.Context, text string) (sentiment.RemoteResponse, error) {
	if text == "boom" {
		return sentiment.RemoteResponse{}, errors.New("model crashed")
	}
	label, _, _ := strings.Cut(text, " ")
	return sentiment.RemoteResponse{Text: text, Sentiment: label, Confidence: 0.9}, nil
}

func TestRemoteAnalyze(t *testing.T) {
	svc, _ := newService()
	_, err := svc.RemoteAnalyze(context.Background(), "hi", "")
	assert.ErrorIs(t, err, ErrAdvancedUnavailable)

	svc.Remote = echoRemote{}
	f := &stubFetcher{text: "negative page body"}
	svc.Fetcher = f

	resp, err := svc.RemoteAnalyze(context.Background(), "positive text", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "positive", resp.Sentiment)
	assert.NotNil(t, resp.Details)
	assert.Empty(t, f.url, "text wins over url")

	resp, err = svc.RemoteAnalyze(context.Background(), "", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "negative", resp.Sentiment)
	assert.Equal(t, "https://example.com/a", f.url)

	_, err = svc.RemoteAnalyze(context.Background(), "", "")
	assert.True(t, sentiment.IsInput(err))

	_, err = svc.RemoteAnalyze(context.Background(), "", "not a url")
	assert.True(t, sentiment.IsInput(err))
	_, err = svc.RemoteAnalyze(context.Background(), "positive text", "not a url")
	assert.True(t, sentiment.IsInput(err))

	_, err = svc.RemoteAnalyze(context.Background(), "boom", "")
	assert.True(t, sentiment.IsTransport(err))

	_, ok := svc.Current()
	assert.False(t, ok)
	assert.Zero(t, svc.History.Len())
}

func TestRemoteBatch(t *testing.T) {
	svc, _ := newService()
	svc.Remote = echoRemote{}
	svc.BatchConcurrency = 2

	csv := "id,Text\n1,positive one\n2,negative two\n3,neutral three\n"
	out, err := svc.RemoteBatch(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "positive", out[0].Sentiment)
	assert.Equal(t, "negative", out[1].Sentiment)
	assert.Equal(t, "neutral", out[2].Sentiment)

	_, err = svc.RemoteBatch(context.Background(), strings.NewReader("text\nok fine\nboom\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = svc.RemoteBatch(context.Background(), strings.NewReader("body\nx\n"))
	assert.True(t, sentiment.IsInput(err))
}
