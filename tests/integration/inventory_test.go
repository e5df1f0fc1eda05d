package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/models"
	"github.com/safar/sweet-shop/internal/store"
)

func createSweet(t *testing.T, st *store.SQLStore, name, category string, price float64, quantity int) *models.Sweet {
	t.Helper()

	sweet, err := st.CreateSweet(context.Background(), store.SweetParams{
		Name:     name,
		Category: category,
		Price:    decimal.NewFromFloat(price),
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("Create sweet %q: %v", name, err)
	}
	return sweet
}

func TestPurchaseDecrementsByOne(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Chocolate Fudge", "Fudge", 3.50, 10)

	updated, err := st.Purchase(ctx, sweet.ID)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if updated.Quantity != 9 {
		t.Errorf("Expected quantity 9 after purchase, got %d", updated.Quantity)
	}

	// A second call decrements again; the effect is per call, not per sweet.
	updated, err = st.Purchase(ctx, sweet.ID)
	if err != nil {
		t.Fatalf("Second purchase: %v", err)
	}
	if updated.Quantity != 8 {
		t.Errorf("Expected quantity 8 after second purchase, got %d", updated.Quantity)
	}
}

func TestPurchaseOutOfStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Dark Chocolate Truffles", "Chocolate", 5.00, 0)

	_, err := st.Purchase(ctx, sweet.ID)
	if !errors.Is(err, database.ErrOutOfStock) {
		t.Fatalf("Expected out of stock error, got: %v", err)
	}

	after, err := st.GetSweet(ctx, sweet.ID)
	if err != nil {
		t.Fatalf("Get sweet: %v", err)
	}
	if after.Quantity != 0 {
		t.Errorf("Quantity should remain 0, got %d", after.Quantity)
	}
}

func TestPurchaseMissingSweet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	st := store.New(db)

	_, err := st.Purchase(context.Background(), 9999)
	if !errors.Is(err, database.ErrSweetNotFound) {
		t.Fatalf("Expected sweet not found error, got: %v", err)
	}
}

func TestRestockIsAdditive(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Lemon Sherbets", "Hard Candy", 2.20, 80)

	if _, err := st.Restock(ctx, sweet.ID, 10); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	updated, err := st.Restock(ctx, sweet.ID, 15)
	if err != nil {
		t.Fatalf("Second restock: %v", err)
	}
	if updated.Quantity != 105 {
		t.Errorf("Expected quantity 105, got %d", updated.Quantity)
	}
}

func TestRestockRejectsNonPositiveAmounts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Mint Humbugs", "Hard Candy", 1.80, 120)

	for _, amount := range []int{0, -5} {
		if _, err := st.Restock(ctx, sweet.ID, amount); !errors.Is(err, database.ErrInvalidQuantity) {
			t.Errorf("Restock(%d): expected invalid quantity error, got: %v", amount, err)
		}
	}

	after, err := st.GetSweet(ctx, sweet.ID)
	if err != nil {
		t.Fatalf("Get sweet: %v", err)
	}
	if after.Quantity != 120 {
		t.Errorf("Quantity should remain 120, got %d", after.Quantity)
	}
}

func TestCheckoutDecrementsEveryLine(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweetA := createSweet(t, st, "Gummy Bears", "Gummies", 1.50, 200)
	sweetB := createSweet(t, st, "Jelly Beans", "Gummies", 2.50, 150)

	err := st.Checkout(ctx, []models.CheckoutLine{
		{SweetID: sweetA.ID, Quantity: 5},
		{SweetID: sweetB.ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	afterA, _ := st.GetSweet(ctx, sweetA.ID)
	if afterA.Quantity != 195 {
		t.Errorf("Expected sweet A quantity 195, got %d", afterA.Quantity)
	}
	afterB, _ := st.GetSweet(ctx, sweetB.ID)
	if afterB.Quantity != 147 {
		t.Errorf("Expected sweet B quantity 147, got %d", afterB.Quantity)
	}
}

func TestCheckoutRollsBackOnInsufficientStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweetA := createSweet(t, st, "Caramel Chews", "Toffee", 2.00, 90)
	sweetB := createSweet(t, st, "Strawberry Bonbons", "Hard Candy", 2.00, 5)

	err := st.Checkout(ctx, []models.CheckoutLine{
		{SweetID: sweetA.ID, Quantity: 2},
		{SweetID: sweetB.ID, Quantity: 1000},
	})

	var insufficient *database.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("Expected insufficient stock error, got: %v", err)
	}
	if insufficient.Name != "Strawberry Bonbons" {
		t.Errorf("Error should name the offending sweet, got %q", insufficient.Name)
	}

	// The first line must not have committed.
	afterA, _ := st.GetSweet(ctx, sweetA.ID)
	if afterA.Quantity != 90 {
		t.Errorf("Expected sweet A quantity unchanged at 90, got %d", afterA.Quantity)
	}
	afterB, _ := st.GetSweet(ctx, sweetB.ID)
	if afterB.Quantity != 5 {
		t.Errorf("Expected sweet B quantity unchanged at 5, got %d", afterB.Quantity)
	}
}

func TestCheckoutReportsFirstOffendingLine(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Chocolate Fudge", "Fudge", 3.50, 1)

	err := st.Checkout(ctx, []models.CheckoutLine{
		{SweetID: 9999, Quantity: 1},
		{SweetID: sweet.ID, Quantity: 100},
	})

	var notFound *database.SweetNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected sweet not found error for the first line, got: %v", err)
	}
	if notFound.ID != 9999 {
		t.Errorf("Expected offending ID 9999, got %d", notFound.ID)
	}
}

func TestCheckoutRejectsInvalidCarts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Gummy Bears", "Gummies", 1.50, 10)

	if err := st.Checkout(ctx, nil); !errors.Is(err, database.ErrEmptyCart) {
		t.Errorf("Expected empty cart error, got: %v", err)
	}
	if err := st.Checkout(ctx, []models.CheckoutLine{}); !errors.Is(err, database.ErrEmptyCart) {
		t.Errorf("Expected empty cart error, got: %v", err)
	}
	err := st.Checkout(ctx, []models.CheckoutLine{{SweetID: sweet.ID, Quantity: 0}})
	if !errors.Is(err, database.ErrInvalidQuantity) {
		t.Errorf("Expected invalid quantity error, got: %v", err)
	}
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Dark Chocolate Truffles", "Chocolate", 5.00, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- st.Checkout(ctx, []models.CheckoutLine{{SweetID: sweet.ID, Quantity: 1}})
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	insufficientCount := 0
	for err := range results {
		var insufficient *database.InsufficientStockError
		switch {
		case err == nil:
			successCount++
		case errors.As(err, &insufficient):
			insufficientCount++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successCount != 1 || insufficientCount != 1 {
		t.Errorf("Expected exactly one success and one insufficient-stock failure, got %d/%d",
			successCount, insufficientCount)
	}

	after, _ := st.GetSweet(ctx, sweet.ID)
	if after.Quantity != 0 {
		t.Errorf("Expected final quantity 0, got %d", after.Quantity)
	}
}

func TestConcurrentPurchasesNeverOversell(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	st := store.New(db)

	sweet := createSweet(t, st, "Jelly Beans", "Gummies", 2.50, 5)

	concurrency := 10
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Purchase(ctx, sweet.ID)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else if !errors.Is(err, database.ErrOutOfStock) {
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if successCount != 5 {
		t.Errorf("Expected exactly 5 successful purchases, got %d", successCount)
	}

	after, _ := st.GetSweet(ctx, sweet.ID)
	if after.Quantity != 0 {
		t.Errorf("Expected final quantity 0, got %d", after.Quantity)
	}
}
