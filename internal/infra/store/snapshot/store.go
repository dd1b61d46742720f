// Package snapshot persists the history and marketplace lists as JSON files,
// one file per list, each rewritten atomically on every save.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bryanwahyu/sentichain/internal/domain/history"
	"github.com/bryanwahyu/sentichain/internal/domain/marketplace"
)

const (
	HistoryFile     = "sentimentHistoryData.json"
	MarketplaceFile = "marketplaceItemsData.json"
)

// slot is one JSON array on disk.
type slot[T any] struct {
	path string
	mu   sync.Mutex
}

func (s *slot[T]) load(limit int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(s.path), err)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *slot[T]) replace(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return atomicWriteFile(s.path, data, 0o644)
}

// Store owns a directory holding both snapshots.
type Store struct {
	dir      string
	history  slot[*history.Entry]
	listings slot[*marketplace.Listing]
}

// Open prepares dir (creating it) for snapshots.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	s := &Store{dir: dir}
	s.history.path = filepath.Join(dir, HistoryFile)
	s.listings.path = filepath.Join(dir, MarketplaceFile)
	return s, nil
}

// Ping checks the directory is still there, for the health endpoint.
func (s *Store) Ping(context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

// History returns the history.Repository view.
func (s *Store) History() *HistoryRepository { return &HistoryRepository{s: s} }

// Listings returns the marketplace.Repository view.
func (s *Store) Listings() *ListingRepository { return &ListingRepository{s: s} }

type HistoryRepository struct{ s *Store }

func (r *HistoryRepository) Load(_ context.Context, limit int) ([]*history.Entry, error) {
	return r.s.history.load(limit)
}

func (r *HistoryRepository) Replace(_ context.Context, entries []*history.Entry) error {
	return r.s.history.replace(entries)
}

type ListingRepository struct{ s *Store }

func (r *ListingRepository) Load(_ context.Context, limit int) ([]*marketplace.Listing, error) {
	return r.s.listings.load(limit)
}

// Replace writes every non-demo listing.
func (r *ListingRepository) Replace(_ context.Context, listings []*marketplace.Listing) error {
	keep := make([]*marketplace.Listing, 0, len(listings))
	for _, l := range listings {
		if !l.IsDemo() {
			keep = append(keep, l)
		}
	}
	return r.s.listings.replace(keep)
}
