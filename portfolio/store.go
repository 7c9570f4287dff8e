package portfolio

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stocks-trader/errs"
)

type Holding struct {
	Symbol   string
	Quantity int64
	AvgPrice decimal.Decimal
}

const (
	EntryBuy    = "buy"
	EntrySell   = "sell"
	EntryDelete = "delete"
)

// Entry is one journal line describing a holding mutation.
type Entry struct {
	Type      string
	Symbol    string
	Quantity  int64
	Price     decimal.Decimal
	Timestamp time.Time
}

// Mutation computes the next state of a holding from the current one.
// A next holding with zero quantity removes the symbol. The returned
// entry, if any, is journaled together with the new state.
type Mutation func(current Holding, found bool) (next Holding, entry *Entry, err error)

type Store interface {
	Apply(ctx context.Context, userID uint, symbol string, m Mutation) (Holding, error)
	Get(ctx context.Context, userID uint, symbol string) (Holding, error)
	List(ctx context.Context, userID uint) (map[string]Holding, error)
	Clear(ctx context.Context, userID uint) error
	Entries(ctx context.Context, userID uint) ([]Entry, error)
}

// MemoryStore keeps holdings in process memory; everything is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	holdings map[uint]map[string]Holding
	journal  map[uint][]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		holdings: make(map[uint]map[string]Holding),
		journal:  make(map[uint][]Entry),
	}
}

func (s *MemoryStore) Apply(_ context.Context, userID uint, symbol string, m Mutation) (Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.holdings[userID][symbol]
	next, entry, err := m(current, found)
	if err != nil {
		return Holding{}, err
	}

	if next.Quantity == 0 {
		delete(s.holdings[userID], symbol)
	} else {
		if s.holdings[userID] == nil {
			s.holdings[userID] = make(map[string]Holding)
		}
		s.holdings[userID][symbol] = next
	}

	if entry != nil {
		s.journal[userID] = append(s.journal[userID], *entry)
	}

	return next, nil
}

func (s *MemoryStore) Get(_ context.Context, userID uint, symbol string) (Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.holdings[userID][symbol]
	if !ok {
		return Holding{}, errs.ErrNotFound
	}

	return h, nil
}

func (s *MemoryStore) List(_ context.Context, userID uint) (map[string]Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Holding, len(s.holdings[userID]))
	for symbol, h := range s.holdings[userID] {
		out[symbol] = h
	}

	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.holdings, userID)
	return nil
}

func (s *MemoryStore) Entries(_ context.Context, userID uint) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.journal[userID]))
	copy(out, s.journal[userID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out, nil
}
