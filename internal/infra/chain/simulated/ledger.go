// Package simulated is an in-process stand-in for the L1X ledger. It keeps
// balances and transactions in memory and derives deterministic hashes.
package simulated

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bryanwahyu/sentichain/internal/application"
	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

const (
	Network        = "l1x-simulated"
	defaultBalance = 100.0
)

// Tx is one ledger record.
type Tx struct {
	Ref     chain.TxRef
	Kind    string
	Payload json.RawMessage
}

// Ledger implements chain.Client.
type Ledger struct {
	clock   application.Clock
	seed    string
	balance float64

	mu        sync.Mutex
	account   *chain.Account
	txs       []Tx
	purchased map[string]bool
}

// New. seed makes the wallet address stable across restarts.
func New(clock application.Clock, seed string) *Ledger {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Ledger{clock: clock, seed: seed, balance: defaultBalance, purchased: map[string]bool{}}
}

func (l *Ledger) Connect(context.Context) (chain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.account == nil {
		sum := sha256.Sum256([]byte("wallet:" + l.seed))
		l.account = &chain.Account{Address: "0x" + hex.EncodeToString(sum[:20]), Network: Network, Balance: l.balance}
	}
	return *l.account, nil
}

func (l *Ledger) Account(context.Context) (chain.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.account == nil {
		return chain.Account{}, false
	}
	return *l.account, true
}

func (l *Ledger) StoreAnalysis(_ context.Context, rec chain.AnalysisRecord) (chain.TxRef, error) {
	return l.record("store_analysis", rec, 0)
}

func (l *Ledger) CreateListing(_ context.Context, rec chain.ListingRecord) (chain.TxRef, error) {
	return l.record("create_listing", rec, 0)
}

// Purchase debits price from the connected wallet. A listing can be bought once.
func (l *Ledger) Purchase(_ context.Context, listingID string, price float64) (chain.TxRef, error) {
	body, err := json.Marshal(map[string]any{"listing_id": listingID, "price": price})
	if err != nil {
		return chain.TxRef{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.purchased[listingID] {
		return chain.TxRef{}, fmt.Errorf("listing %s already purchased: %w", listingID, sentiment.ErrConflict)
	}
	ref, err := l.recordLocked("purchase", body, price)
	if err != nil {
		return chain.TxRef{}, err
	}
	l.purchased[listingID] = true
	return ref, nil
}

// Transactions returns a copy of the ledger.
func (l *Ledger) Transactions() []Tx {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Tx(nil), l.txs...)
}

func (l *Ledger) record(kind string, payload any, cost float64) (chain.TxRef, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return chain.TxRef{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recordLocked(kind, body, cost)
}

func (l *Ledger) recordLocked(kind string, body []byte, cost float64) (chain.TxRef, error) {
	if l.account == nil {
		return chain.TxRef{}, chain.ErrWalletNotConnected
	}
	if cost > l.account.Balance {
		return chain.TxRef{}, fmt.Errorf("have %.2f, need %.2f: %w", l.account.Balance, cost, chain.ErrInsufficientFunds)
	}
	l.account.Balance -= cost

	ref := chain.TxRef{
		Hash:      txHash(l.account.Address, len(l.txs), kind, body),
		Timestamp: l.clock.Now().UTC(),
		Network:   Network,
	}
	l.txs = append(l.txs, Tx{Ref: ref, Kind: kind, Payload: body})
	return ref, nil
}

// txHash depends only on the sender, nonce and payload.
func txHash(from string, nonce int, kind string, body []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|", from, nonce, kind)
	h.Write(body)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
