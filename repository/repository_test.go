package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stocks-trader/database"
	"stocks-trader/errs"
	"stocks-trader/models"
	"stocks-trader/portfolio"
	"stocks-trader/repository"
)

func TestHoldingsRepositoryLedger(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewHoldingsRepository(database.OpenTest(t))
	ledger := portfolio.NewLedger(repo)

	if _, err := ledger.Buy(ctx, 1, "AAPL", 10, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if _, err := ledger.Buy(ctx, 1, "AAPL", 10, decimal.NewFromInt(200)); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if _, err := ledger.Buy(ctx, 2, "AAPL", 1, decimal.NewFromInt(5)); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	h, err := repo.Get(ctx, 1, "AAPL")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if h.Quantity != 20 || !h.AvgPrice.Equal(decimal.NewFromInt(150)) {
		t.Errorf("holding = %d @ %s, want 20 @ 150", h.Quantity, h.AvgPrice)
	}

	if _, err := ledger.Sell(ctx, 1, "AAPL", 21); !errors.Is(err, errs.ErrInsufficientShares) {
		t.Fatalf("oversell err = %v, want ErrInsufficientShares", err)
	}
	if h, _ := repo.Get(ctx, 1, "AAPL"); h.Quantity != 20 {
		t.Errorf("quantity after failed sell = %d, want 20", h.Quantity)
	}

	if _, err := ledger.Sell(ctx, 1, "AAPL", 20); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if _, err := repo.Get(ctx, 1, "AAPL"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Get after full sell err = %v, want ErrNotFound", err)
	}

	// Buying back a symbol that was sold out must not collide with the old row.
	if _, err := ledger.Buy(ctx, 1, "AAPL", 3, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Buy after sell-out: %v", err)
	}

	entries, err := repo.Entries(ctx, 1)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	wantTypes := []string{portfolio.EntryBuy, portfolio.EntryBuy, portfolio.EntrySell, portfolio.EntryBuy}
	if len(entries) != len(wantTypes) {
		t.Fatalf("entries = %+v, want %d entries", entries, len(wantTypes))
	}
	for i, e := range entries {
		if e.Type != wantTypes[i] {
			t.Errorf("entry %d type = %q, want %q", i, e.Type, wantTypes[i])
		}
	}

	if err := ledger.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if list, _ := repo.List(ctx, 1); len(list) != 0 {
		t.Errorf("List after clear = %v, want empty", list)
	}
	if list, _ := repo.List(ctx, 2); len(list) != 1 {
		t.Errorf("other user's holdings = %v, want one", list)
	}
}

func TestHoldingsRepositoryAverageMatchesMemoryStore(t *testing.T) {
	ctx := context.Background()
	db := portfolio.NewLedger(repository.NewHoldingsRepository(database.OpenTest(t)))
	mem := portfolio.NewLedger(portfolio.NewMemoryStore())

	lots := []struct {
		qty   int64
		price string
	}{{3, "1"}, {3, "2"}, {1, "0"}, {11, "3.3333"}}

	for _, l := range []*portfolio.Ledger{db, mem} {
		for _, lot := range lots {
			if _, err := l.Buy(ctx, 1, "IBM", lot.qty, decimal.RequireFromString(lot.price)); err != nil {
				t.Fatalf("Buy: %v", err)
			}
		}
	}

	fromDB, err := db.Holding(ctx, 1, "IBM")
	if err != nil {
		t.Fatalf("Holding (database): %v", err)
	}
	fromMem, err := mem.Holding(ctx, 1, "IBM")
	if err != nil {
		t.Fatalf("Holding (memory): %v", err)
	}

	if !fromDB.AvgPrice.Equal(fromMem.AvgPrice) {
		t.Errorf("avg price database = %s, memory = %s", fromDB.AvgPrice, fromMem.AvgPrice)
	}
}

func TestHoldingsRepositoryRollback(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewHoldingsRepository(database.OpenTest(t))

	boom := errors.New("boom")
	_, err := repo.Apply(ctx, 1, "IBM", func(portfolio.Holding, bool) (portfolio.Holding, *portfolio.Entry, error) {
		return portfolio.Holding{}, nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Apply err = %v, want boom", err)
	}

	if entries, _ := repo.Entries(ctx, 1); len(entries) != 0 {
		t.Errorf("entries after failed mutation = %+v, want none", entries)
	}
}

func TestUsersRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUsersRepository(database.OpenTest(t))

	u := &models.User{Username: "alice", Salt: "00", PasswordHash: "aa"}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("CreateUser did not assign an id")
	}

	if err := repo.CreateUser(ctx, &models.User{Username: "alice", Salt: "01", PasswordHash: "bb"}); !errors.Is(err, errs.ErrConflict) {
		t.Errorf("duplicate CreateUser err = %v, want ErrConflict", err)
	}

	if _, err := repo.GetUserByUsername(ctx, "bob"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("GetUserByUsername(bob) err = %v, want ErrNotFound", err)
	}

	if err := repo.UpdatePassword(ctx, u.ID, "02", "cc"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, err := repo.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Salt != "02" || got.PasswordHash != "cc" {
		t.Errorf("stored credentials = %q/%q, want 02/cc", got.Salt, got.PasswordHash)
	}

	if err := repo.UpdatePassword(ctx, 999, "03", "dd"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("UpdatePassword(unknown) err = %v, want ErrNotFound", err)
	}
}

func TestPricesRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPricesRepository(database.OpenTest(t))

	base := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := repo.RecordPrice(ctx, "MSFT", decimal.NewFromInt(int64(100+i)), base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordPrice: %v", err)
		}
	}
	if err := repo.RecordPrice(ctx, "IBM", decimal.NewFromInt(1), base); err != nil {
		t.Fatalf("RecordPrice: %v", err)
	}

	points, err := repo.PriceHistory(ctx, "MSFT", 3)
	if err != nil {
		t.Fatalf("PriceHistory: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("PriceHistory returned %d points, want 3", len(points))
	}
	if !points[0].Price.Equal(decimal.NewFromInt(104)) {
		t.Errorf("newest price = %s, want 104", points[0].Price)
	}
	for _, p := range points {
		if p.Symbol != "MSFT" {
			t.Errorf("unexpected symbol %q in MSFT history", p.Symbol)
		}
	}
}
