package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"vibebudget/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateTransactionsBatchAtomicity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	good := core.Transaction{
		UserID: "u1", Date: "2025-10-05", Description: "KAUFLAND",
		Amount: amt("-45.50"), Currency: "RON",
	}
	bad := good
	bad.Date = "nu-e-data"

	if _, err := repo.CreateTransactions(ctx, []core.Transaction{good, bad}); err == nil {
		t.Fatal("expected batch with invalid transaction to fail")
	}
	// Nothing from the failed batch may have landed.
	txs, err := repo.ListTransactions(ctx, "u1", TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("failed batch leaked %d transactions", len(txs))
	}

	stored, err := repo.CreateTransactions(ctx, []core.Transaction{good})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if stored[0].ID == "" {
		t.Fatal("stored transaction has no id")
	}
	if !stored[0].Amount.Equal(amt("-45.5")) {
		t.Fatalf("amount = %s", stored[0].Amount)
	}
}

func TestListTransactionsFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{
		UserID: "u1", Name: "Cumpărături", Type: core.CategoryTypeExpense,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	mk := func(date string, categoryID *string, amount string) core.Transaction {
		return core.Transaction{
			UserID: "u1", Date: date, Description: "x",
			CategoryID: categoryID, Amount: amt(amount), Currency: "RON",
		}
	}
	if _, err := repo.CreateTransactions(ctx, []core.Transaction{
		mk("2025-09-15", &cat.ID, "-10"),
		mk("2025-10-01", nil, "-20"),
		mk("2025-10-20", &cat.ID, "-30"),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	october, err := repo.ListTransactions(ctx, "u1", TransactionFilter{From: "2025-10-01", To: "2025-10-31"})
	if err != nil {
		t.Fatalf("list october: %v", err)
	}
	if len(october) != 2 {
		t.Fatalf("october = %d transactions, expected 2", len(october))
	}

	uncat, err := repo.ListTransactions(ctx, "u1", TransactionFilter{Uncategorized: true})
	if err != nil {
		t.Fatalf("list uncategorized: %v", err)
	}
	if len(uncat) != 1 || !uncat[0].Amount.Equal(amt("-20")) {
		t.Fatalf("uncategorized = %+v", uncat)
	}

	// Other users see nothing.
	other, err := repo.ListTransactions(ctx, "u2", TransactionFilter{})
	if err != nil {
		t.Fatalf("list other user: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("user isolation broken: %d rows", len(other))
	}
}

func TestDeleteCategoryDetachesTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{
		UserID: "u1", Name: "Transport", Type: core.CategoryTypeExpense,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	stored, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: "u1", Date: "2025-10-01", Description: "OMV",
		CategoryID: &cat.ID, Amount: amt("-60"), Currency: "RON",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if _, err := repo.SaveKeyword(ctx, core.UserKeyword{
		UserID: "u1", Keyword: "omv", CategoryID: cat.ID,
	}); err != nil {
		t.Fatalf("save keyword: %v", err)
	}

	if err := repo.DeleteCategory(ctx, "u1", cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	// Transaction survives, detached.
	got, err := repo.GetTransaction(ctx, "u1", stored.ID)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("expected category reference cleared, got %v", *got.CategoryID)
	}
	// Keyword goes with the category.
	kws, err := repo.ListKeywords(ctx, "u1")
	if err != nil {
		t.Fatalf("list keywords: %v", err)
	}
	if len(kws) != 0 {
		t.Fatalf("expected keywords cascaded away, got %+v", kws)
	}
}

func TestSaveKeywordUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c1, _ := repo.CreateCategory(ctx, core.Category{UserID: "u1", Name: "A", Type: core.CategoryTypeExpense})
	c2, _ := repo.CreateCategory(ctx, core.Category{UserID: "u1", Name: "B", Type: core.CategoryTypeExpense})

	first, err := repo.SaveKeyword(ctx, core.UserKeyword{UserID: "u1", Keyword: "  KAUFLAND ", CategoryID: c1.ID})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.Keyword != "kaufland" {
		t.Fatalf("keyword not normalized: %q", first.Keyword)
	}

	second, err := repo.SaveKeyword(ctx, core.UserKeyword{UserID: "u1", Keyword: "kaufland", CategoryID: c2.ID})
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert changed the row id: %s vs %s", second.ID, first.ID)
	}

	kws, err := repo.ListKeywords(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(kws) != 1 || kws[0].CategoryID != c2.ID {
		t.Fatalf("expected single keyword repointed to %s, got %+v", c2.ID, kws)
	}
}

func TestSeedCategoriesIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seeds := []core.Category{
		{Name: "Transport", Icon: "🚗", Type: core.CategoryTypeExpense, IsSystem: true},
		{Name: "Venituri", Icon: "💰", Type: core.CategoryTypeIncome, IsSystem: true},
	}
	for i := 0; i < 2; i++ {
		if err := repo.SeedCategories(ctx, "u1", seeds); err != nil {
			t.Fatalf("seed pass %d: %v", i, err)
		}
	}

	cats, err := repo.ListCategories(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories after double seed, got %d", len(cats))
	}

	id, err := repo.ResolveCategoryID(ctx, "u1", "Venituri")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}
	if _, err := repo.ResolveCategoryID(ctx, "u1", "Inexistent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureBank(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, err := repo.EnsureBank(ctx, "u1", "Revolut")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	id2, err := repo.EnsureBank(ctx, "u1", "Revolut")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("EnsureBank created a duplicate: %s vs %s", id1, id2)
	}

	// Same name for another user is a distinct bank.
	id3, err := repo.EnsureBank(ctx, "u2", "Revolut")
	if err != nil {
		t.Fatalf("ensure other user: %v", err)
	}
	if id3 == id1 {
		t.Fatal("banks shared across users")
	}
}

func TestListCurrenciesIncludesSystem(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	curs, err := repo.ListCurrencies(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	codes := make(map[string]bool)
	for _, c := range curs {
		codes[c.Code] = true
	}
	for _, want := range []string{"RON", "MDL", "EUR", "USD"} {
		if !codes[want] {
			t.Errorf("seeded currency %s missing", want)
		}
	}

	if _, err := repo.CreateCurrency(ctx, core.Currency{UserID: "u1", Code: "GBP", Name: "Liră"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	curs, err = repo.ListCurrencies(ctx, "u1")
	if err != nil {
		t.Fatalf("list again: %v", err)
	}
	if len(curs) != 5 {
		t.Fatalf("expected 5 currencies, got %d", len(curs))
	}
	// Another user does not see u1's GBP.
	other, err := repo.ListCurrencies(ctx, "u2")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 4 {
		t.Fatalf("expected 4 currencies for other user, got %d", len(other))
	}
}
