package chain

import (
	"context"
	"errors"
	"time"
)

// ErrWalletNotConnected is returned for chain operations attempted before Connect.
var ErrWalletNotConnected = errors.New("wallet not connected")

// ErrUnavailable indicates the chain client cannot be reached.
var ErrUnavailable = errors.New("chain unavailable")

// ErrInsufficientFunds is returned when the wallet cannot cover a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// TxRef identifies a stored analysis on the ledger.
type TxRef struct {
	Hash      string    `json:"txHash"`
	Timestamp time.Time `json:"timestamp"`
	Network   string    `json:"network,omitempty"`
}

// Account is the connected wallet.
type Account struct {
	Address string  `json:"address"`
	Network string  `json:"network"`
	Balance float64 `json:"balance"`
}

// AnalysisRecord is what gets written to the ledger for one analysis.
type AnalysisRecord struct {
	Text               string   `json:"text"`
	Sentiment          string   `json:"sentiment"`
	Confidence         float64  `json:"confidence"`
	PositivePercentage float64  `json:"positive_percentage"`
	NegativePercentage float64  `json:"negative_percentage"`
	NeutralPercentage  float64  `json:"neutral_percentage"`
	KeyTopics          []string `json:"key_topics"`
	Model              string   `json:"model"`
}

// ListingRecord is a marketplace listing written to the ledger.
type ListingRecord struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Sentiment   string  `json:"sentiment"`
}

// Client is the optional blockchain capability. A nil Client means the chain is disabled.
type Client interface {
	Connect(ctx context.Context) (Account, error)
	Account(ctx context.Context) (Account, bool)
	StoreAnalysis(ctx context.Context, rec AnalysisRecord) (TxRef, error)
	CreateListing(ctx context.Context, rec ListingRecord) (TxRef, error)
	Purchase(ctx context.Context, listingID string, price float64) (TxRef, error)
}
