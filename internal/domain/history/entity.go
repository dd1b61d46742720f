package history

import (
	"strings"
	"time"

	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

// EntryID identifier type
type EntryID string

// Entry is one analysis kept in history. Text holds the snippet of the original (pre-filter)
// input.
type Entry struct {
	ID             EntryID          `json:"id"`
	Text           string           `json:"text"`
	Results        sentiment.Result `json:"results"`
	Timestamp      time.Time        `json:"timestamp"`
	Model          sentiment.Model  `json:"model"`
	Keyword        string           `json:"keyword,omitempty"`
	BlockchainData *chain.TxRef     `json:"blockchainData,omitempty"`
}

// OnChain reports whether a transaction reference was attached to the entry.
func (e *Entry) OnChain() bool { return e.BlockchainData != nil && e.BlockchainData.Hash != "" }

// Filter values accepted by Matches.
const (
	FilterAll        = "all"
	FilterBlockchain = "blockchain"
)

// Matches applies the history filter ("all", "blockchain" or a lowercase sentiment) and a
// case-insensitive search over the stored text.
func (e *Entry) Matches(filter, search string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	switch filter {
	case "", FilterAll:
	case FilterBlockchain:
		if !e.OnChain() {
			return false
		}
	default:
		if e.Results.Sentiment.Class() != filter {
			return false
		}
	}
	search = strings.ToLower(strings.TrimSpace(search))
	return search == "" || strings.Contains(strings.ToLower(e.Text), search)
}
