package portfolio

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stocks-trader/errs"
)

const lockStripes = 64

const maxSymbolLen = 16

// PriceScale matches the decimal(20,8) columns so both stores agree on averages.
const PriceScale = 8

// QuoteFunc returns the current price of a symbol.
type QuoteFunc func(ctx context.Context, symbol string) (decimal.Decimal, error)

// Ledger is the authoritative per-user holdings book. Mutations of one
// user are serialized through a striped lock table keyed by user id.
type Ledger struct {
	store   Store
	stripes [lockStripes]sync.Mutex
	now     func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
	}
}

func (l *Ledger) lock(userID uint) func() {
	mu := &l.stripes[userID%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// NormalizeSymbol trims and upper-cases a ticker and rejects malformed ones.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" || len(s) > maxSymbolLen {
		return "", fmt.Errorf("%w: invalid symbol %q", errs.ErrInvalidArgument, symbol)
	}

	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '^':
		default:
			return "", fmt.Errorf("%w: invalid symbol %q", errs.ErrInvalidArgument, symbol)
		}
	}

	return s, nil
}

func (l *Ledger) Buy(ctx context.Context, userID uint, symbol string, quantity int64, price decimal.Decimal) (Holding, error) {
	const op = "portfolio.Buy"

	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return Holding{}, fmt.Errorf("%s: %w", op, err)
	}
	if quantity <= 0 {
		return Holding{}, fmt.Errorf("%s: %w: quantity must be positive", op, errs.ErrInvalidArgument)
	}
	if price.IsNegative() {
		return Holding{}, fmt.Errorf("%s: %w: price must not be negative", op, errs.ErrInvalidArgument)
	}

	unlock := l.lock(userID)
	defer unlock()

	h, err := l.store.Apply(ctx, userID, symbol, func(cur Holding, found bool) (Holding, *Entry, error) {
		next := Holding{Symbol: symbol, Quantity: quantity, AvgPrice: price}
		if found {
			if cur.Quantity > math.MaxInt64-quantity {
				return Holding{}, nil, fmt.Errorf("%w: quantity overflow", errs.ErrInvalidArgument)
			}
			total := cur.Quantity + quantity
			cost := cur.AvgPrice.Mul(decimal.NewFromInt(cur.Quantity)).
				Add(price.Mul(decimal.NewFromInt(quantity)))
			next.Quantity = total
			next.AvgPrice = cost.DivRound(decimal.NewFromInt(total), PriceScale)
		}

		return next, &Entry{
			Type:      EntryBuy,
			Symbol:    symbol,
			Quantity:  quantity,
			Price:     price,
			Timestamp: l.now(),
		}, nil
	})
	if err != nil {
		return Holding{}, fmt.Errorf("%s: %w", op, err)
	}

	return h, nil
}

// Sell removes quantity shares; the holding disappears when it reaches zero.
// Selling more than held fails with ErrInsufficientShares and changes nothing.
func (l *Ledger) Sell(ctx context.Context, userID uint, symbol string, quantity int64) (Holding, error) {
	const op = "portfolio.Sell"

	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return Holding{}, fmt.Errorf("%s: %w", op, err)
	}
	if quantity <= 0 {
		return Holding{}, fmt.Errorf("%s: %w: quantity must be positive", op, errs.ErrInvalidArgument)
	}

	unlock := l.lock(userID)
	defer unlock()

	h, err := l.store.Apply(ctx, userID, symbol, func(cur Holding, found bool) (Holding, *Entry, error) {
		if !found || cur.Quantity < quantity {
			held := int64(0)
			if found {
				held = cur.Quantity
			}
			return Holding{}, nil, fmt.Errorf("%w: %s held %d, requested %d", errs.ErrInsufficientShares, symbol, held, quantity)
		}

		next := cur
		next.Quantity -= quantity

		return next, &Entry{
			Type:      EntrySell,
			Symbol:    symbol,
			Quantity:  quantity,
			Price:     cur.AvgPrice,
			Timestamp: l.now(),
		}, nil
	})
	if err != nil {
		return Holding{}, fmt.Errorf("%s: %w", op, err)
	}

	return h, nil
}

// View returns a snapshot of the user's holdings; unknown users get an empty map.
func (l *Ledger) View(ctx context.Context, userID uint) (map[string]Holding, error) {
	holdings, err := l.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("portfolio.View: %w", err)
	}

	return holdings, nil
}

func (l *Ledger) Holding(ctx context.Context, userID uint, symbol string) (Holding, error) {
	const op = "portfolio.Holding"

	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return Holding{}, fmt.Errorf("%s: %w", op, err)
	}

	h, err := l.store.Get(ctx, userID, symbol)
	if err != nil {
		return Holding{}, fmt.Errorf("%s: %w", op, err)
	}

	return h, nil
}

func (l *Ledger) DeleteHolding(ctx context.Context, userID uint, symbol string) error {
	const op = "portfolio.DeleteHolding"

	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	unlock := l.lock(userID)
	defer unlock()

	_, err = l.store.Apply(ctx, userID, symbol, func(cur Holding, found bool) (Holding, *Entry, error) {
		if !found {
			return Holding{}, nil, fmt.Errorf("%w: no holding for %s", errs.ErrNotFound, symbol)
		}

		return Holding{Symbol: symbol}, &Entry{
			Type:      EntryDelete,
			Symbol:    symbol,
			Quantity:  cur.Quantity,
			Price:     cur.AvgPrice,
			Timestamp: l.now(),
		}, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Clear drops every holding of the user. Clearing an empty portfolio is not an error.
func (l *Ledger) Clear(ctx context.Context, userID uint) error {
	unlock := l.lock(userID)
	defer unlock()

	if err := l.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("portfolio.Clear: %w", err)
	}

	return nil
}

// Value prices every holding with quote and returns the total. The first
// failing quote aborts the computation.
func (l *Ledger) Value(ctx context.Context, userID uint, quote QuoteFunc) (decimal.Decimal, error) {
	const op = "portfolio.Value"

	holdings, err := l.store.List(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	total := decimal.Zero
	for symbol, h := range holdings {
		price, err := quote(ctx, symbol)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s: price %s: %w", op, symbol, err)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(h.Quantity)))
	}

	return total, nil
}

func (l *Ledger) Transactions(ctx context.Context, userID uint) ([]Entry, error) {
	entries, err := l.store.Entries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("portfolio.Transactions: %w", err)
	}

	return entries, nil
}
