package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/sentichain/internal/application"
	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/history"
	domain "github.com/bryanwahyu/sentichain/internal/domain/marketplace"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

const (
	DefaultPersistLimit = 50
	demoCount           = 8
	localSeller         = "Your Wallet"
)

// Service owns the in-memory listing list. Demo listings are generated when
// nothing is persisted and are never written back.
type Service struct {
	repo         domain.Repository
	chain        chain.Client
	clock        application.Clock
	rand         sentiment.Rand
	log          *slog.Logger
	persistLimit int

	// Lock order: persistMu then mu.
	persistMu sync.Mutex
	mu        sync.RWMutex
	listings  []*domain.Listing
	// pending holds listings whose chain purchase is in flight.
	pending map[domain.ListingID]bool
}

// Option configures a Service.
type Option func(*Service)

func WithChain(c chain.Client) Option      { return func(s *Service) { s.chain = c } }
func WithClock(c application.Clock) Option { return func(s *Service) { s.clock = c } }
func WithRand(r sentiment.Rand) Option     { return func(s *Service) { s.rand = r } }
func WithLogger(l *slog.Logger) Option     { return func(s *Service) { s.log = l } }
func WithPersistLimit(n int) Option        { return func(s *Service) { s.persistLimit = n } }

func NewService(repo domain.Repository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		clock:        application.SystemClock{},
		log:          slog.Default(),
		persistLimit: DefaultPersistLimit,
		pending:      make(map[domain.ListingID]bool),
	}
	for _, o := range opts {
		o(s)
	}
	if s.rand == nil {
		s.rand = sentiment.NewSeededRand(s.clock.Now().UnixNano())
	}
	return s
}

// Load reads persisted listings; demo listings are generated when none are found.
// A read failure falls back to demo listings and is returned as a PersistenceError.
func (s *Service) Load(ctx context.Context) error {
	var loaded []*domain.Listing
	var loadErr error
	if s.repo != nil {
		loaded, loadErr = s.repo.Load(ctx, s.persistLimit)
		if loadErr != nil {
			loadErr = &sentiment.PersistenceError{Op: "load marketplace", Err: loadErr}
			loaded = nil
		}
	}
	valid := make([]*domain.Listing, 0, len(loaded))
	for _, l := range loaded {
		if l != nil && l.Valid() {
			valid = append(valid, l)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = valid
	if len(s.listings) == 0 {
		s.listings = s.demoListings()
		s.log.Info("generated demo marketplace listings", "count", len(s.listings))
	}
	return loadErr
}

// List returns listings in the category ("all" or empty for every listing).
func (s *Service) List(category string) []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if l.InCategory(category) {
			out = append(out, *l)
		}
	}
	return out
}

// Create lists the analysis in cur for price L1X. With a chain client the
// listing is registered on the ledger first and requires a connected wallet.
func (s *Service) Create(ctx context.Context, cur history.Entry, price float64) (domain.Listing, error) {
	if price <= 0 {
		return domain.Listing{}, sentiment.NewInputError("invalid price entered, please enter a positive number")
	}
	if cur.ID == "" {
		return domain.Listing{}, sentiment.NewInputError("please perform an analysis first before listing data")
	}

	category := "general"
	if len(cur.Results.KeyTopics) > 0 {
		category = domain.CategoryTag(cur.Results.KeyTopics[0])
	}
	l := &domain.Listing{
		ID:          domain.ListingID("listed-" + uuid.NewString()),
		Title:       fmt.Sprintf("Listed: %s analysis", cur.Model),
		Description: fmt.Sprintf("User-listed data snippet: %s...", truncate(cur.Text, 100)),
		Price:       price,
		Seller:      localSeller,
		Category:    category,
		Sentiment:   string(cur.Results.Sentiment),
		Created:     s.clock.Now().UTC(),
	}

	if s.chain != nil {
		acct, ok := s.chain.Account(ctx)
		if !ok {
			return domain.Listing{}, chain.ErrWalletNotConnected
		}
		ref, err := s.chain.CreateListing(ctx, chain.ListingRecord{
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			Category:    l.Category,
			Sentiment:   l.Sentiment,
		})
		if err != nil {
			return domain.Listing{}, err
		}
		l.Seller = acct.Address
		s.log.Info("listing registered on chain", "id", l.ID, "tx", ref.Hash)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.listings = append([]*domain.Listing{l}, s.listings...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return *l, s.persist(ctx, snapshot)
}

// Purchase marks the listing sold. Purchasing a sold listing, or one whose
// purchase is still in flight, is a conflict.
func (s *Service) Purchase(ctx context.Context, id domain.ListingID) (domain.Listing, error) {
	s.mu.Lock()
	l := s.findLocked(id)
	if l == nil {
		s.mu.Unlock()
		return domain.Listing{}, fmt.Errorf("listing %s: %w", id, sentiment.ErrNotFound)
	}
	if l.IsSold || s.pending[id] {
		s.mu.Unlock()
		return domain.Listing{}, fmt.Errorf("listing %s already sold: %w", id, sentiment.ErrConflict)
	}
	s.pending[id] = true
	price := l.Price
	s.mu.Unlock()

	if s.chain != nil {
		ref, err := s.chain.Purchase(ctx, string(id), price)
		if err != nil {
			s.mu.Lock()
			delete(s.pending, id)
			s.mu.Unlock()
			return domain.Listing{}, err
		}
		s.log.Info("listing purchased on chain", "id", id, "tx", ref.Hash)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	delete(s.pending, id)
	l.IsSold = true
	out := *l
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return out, s.persist(ctx, snapshot)
}

func (s *Service) findLocked(id domain.ListingID) *domain.Listing {
	for _, l := range s.listings {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (s *Service) snapshotLocked() []*domain.Listing {
	out := make([]*domain.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if l.IsDemo() {
			continue
		}
		c := *l
		out = append(out, &c)
		if len(out) == s.persistLimit {
			break
		}
	}
	return out
}

func (s *Service) persist(ctx context.Context, listings []*domain.Listing) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Replace(ctx, listings); err != nil {
		s.log.Warn("persist marketplace failed", "listings", len(listings), "err", err)
		return &sentiment.PersistenceError{Op: "save marketplace", Err: err}
	}
	return nil
}

func (s *Service) demoListings() []*domain.Listing {
	categories := sentiment.TopicNames()
	labels := []sentiment.Label{sentiment.Positive, sentiment.Negative, sentiment.Neutral}
	now := s.clock.Now().UTC()

	out := make([]*domain.Listing, 0, demoCount)
	for i := 0; i < demoCount; i++ {
		category := categories[s.rand.Intn(len(categories))]
		label := labels[s.rand.Intn(len(labels))]
		price := float64(int((s.rand.Float64()*9+1.5)*100)) / 100
		words := 500 + s.rand.Intn(2500)
		tag := domain.CategoryTag(category)
		out = append(out, &domain.Listing{
			ID:          domain.ListingID(fmt.Sprintf("%s%d%d", domain.DemoPrefix, now.UnixMilli(), i)),
			Title:       fmt.Sprintf("%s Sentiment Dataset #%d", category, i+1),
			Description: fmt.Sprintf("Anonymized sentiment data (%d words) related to %s. Sentiment focus: %s.", words, strings.SplitN(category, "/", 2)[0], label),
			Price:       price,
			Seller:      fmt.Sprintf("0x%08x...%04x", s.rand.Intn(1<<31), s.rand.Intn(1<<16)),
			Category:    tag,
			Sentiment:   string(label),
			Created:     now.Add(-time.Duration(s.rand.Float64() * float64(30*24*time.Hour))),
			IsSold:      s.rand.Float64() > 0.8,
		})
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
