package history

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	domain "github.com/bryanwahyu/sentichain/internal/domain/history"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

const (
	DefaultMemoryLimit  = 50
	DefaultPersistLimit = 30
)

// Store owns the in-memory history list and mirrors it to a Repository.
// Memory is authoritative: a failed write is reported but never rolls the list back.
// Store is safe for concurrent use.
type Store struct {
	repo         domain.Repository
	log          *slog.Logger
	memoryLimit  int
	persistLimit int

	// persistMu serialises mutate+Replace so an older snapshot never lands
	// after a newer one. Lock order: persistMu then mu.
	persistMu sync.Mutex
	mu        sync.RWMutex
	entries   []*domain.Entry
}

// NewStore. repo may be nil, in which case history lives in memory only.
func NewStore(repo domain.Repository, memoryLimit, persistLimit int, log *slog.Logger) *Store {
	if memoryLimit <= 0 {
		memoryLimit = DefaultMemoryLimit
	}
	if persistLimit <= 0 {
		persistLimit = DefaultPersistLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{repo: repo, log: log, memoryLimit: memoryLimit, persistLimit: persistLimit}
}

// Load replaces the in-memory list with the persisted snapshot.
// On failure the list is reset to empty and a PersistenceError is returned.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	entries, err := s.repo.Load(ctx, s.memoryLimit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.entries = nil
		return &sentiment.PersistenceError{Op: "load history", Err: err}
	}
	if len(entries) > s.memoryLimit {
		entries = entries[:s.memoryLimit]
	}
	s.entries = entries
	return nil
}

// Add puts e at the head of the list. An entry with the same timestamp as the
// current head is treated as a duplicate and skipped (added == false).
func (s *Store) Add(ctx context.Context, e *domain.Entry) (added bool, err error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if len(s.entries) > 0 && s.entries[0].Timestamp.Equal(e.Timestamp) {
		s.mu.Unlock()
		s.log.Debug("skip duplicate history entry", "timestamp", e.Timestamp)
		return false, nil
	}
	s.entries = append([]*domain.Entry{e}, s.entries...)
	if len(s.entries) > s.memoryLimit {
		s.entries = s.entries[:s.memoryLimit]
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return true, s.persist(ctx, snapshot)
}

// AttachTx records a ledger reference on the entry with id.
func (s *Store) AttachTx(ctx context.Context, id domain.EntryID, ref chain.TxRef) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	var found bool
	for _, e := range s.entries {
		if e.ID == id {
			r := ref
			e.BlockchainData = &r
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return sentiment.ErrNotFound
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(ctx, snapshot)
}

// Get returns a copy of the entry at index (0 = newest).
func (s *Store) Get(index int) (domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.entries) {
		return domain.Entry{}, sentiment.ErrNotFound
	}
	return *s.entries[index], nil
}

// Item is a filtered entry together with its position in the full list.
type Item struct {
	Index int `json:"index"`
	*domain.Entry
}

// List applies the history filter and search, newest first.
func (s *Store) List(filter, search string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.entries))
	for i, e := range s.entries {
		if e.Matches(filter, search) {
			c := *e
			out = append(out, Item{Index: i, Entry: &c})
		}
	}
	return out
}

// Len of the in-memory list.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) snapshotLocked() []*domain.Entry {
	n := len(s.entries)
	if n > s.persistLimit {
		n = s.persistLimit
	}
	out := make([]*domain.Entry, n)
	for i := 0; i < n; i++ {
		c := *s.entries[i]
		out[i] = &c
	}
	return out
}

func (s *Store) persist(ctx context.Context, entries []*domain.Entry) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Replace(ctx, entries); err != nil {
		s.log.Warn("persist history failed", "entries", len(entries), "err", err)
		return &sentiment.PersistenceError{Op: "save history", Err: err}
	}
	return nil
}
