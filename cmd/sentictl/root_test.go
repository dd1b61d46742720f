package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScore(t *testing.T) {
	out, err := execute(t, "", "score", "great", "amazing", "wonderful")
	require.NoError(t, err)
	assert.Contains(t, out, "Sentiment:  Positive")
	assert.Contains(t, out, "Confidence: 73.9%")
}

func TestScore_StdinJSON(t *testing.T) {
	out, err := execute(t, "terrible awful horrible", "--json", "score")
	require.NoError(t, err)
	var r sentiment.Result
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, sentiment.Negative, r.Sentiment)
	assert.Equal(t, 95.0, r.NegativePercentage)
}

func TestConsensus_SeedIsReproducible(t *testing.T) {
	a, err := execute(t, "", "--seed", "42", "--json", "consensus", "good good bad")
	require.NoError(t, err)
	b, err := execute(t, "", "--seed", "42", "--json", "consensus", "good good bad")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var r sentiment.Result
	require.NoError(t, json.Unmarshal([]byte(a), &r))
	require.NotNil(t, r.ValidatorCount)
	assert.Equal(t, sentiment.ModelBlockchain, r.Model)
}

func TestTopics(t *testing.T) {
	out, err := execute(t, "", "topics", "bitcoin", "wallet", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Blockchain/Crypto")
	assert.Contains(t, out, "66.7%")

	out, err = execute(t, "", "topics", "hello world")
	require.NoError(t, err)
	assert.Contains(t, out, "General")
	assert.Contains(t, out, "100.0%")

	out, err = execute(t, "   ", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "General")

	out, err = execute(t, "", "topics")
	require.NoError(t, err)
	assert.Equal(t, "no topics\n", out)
}

func TestBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("text\ngreat amazing\nterrible awful\n"), 0o600))

	out, err := execute(t, "", "batch", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1\tPositive"))
	assert.True(t, strings.HasPrefix(lines[1], "2\tNegative"))

	_, err = execute(t, "", "batch")
	assert.Error(t, err)
}
