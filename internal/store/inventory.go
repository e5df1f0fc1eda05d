package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/models"
)

// lockSweet reads a sweet inside tx with a row lock, so the quantity it
// returns stays valid until the transaction ends.
func lockSweet(ctx context.Context, tx *sql.Tx, id int64) (*models.Sweet, error) {
	sweet := &models.Sweet{}

	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE id = $1 FOR UPDATE`

	if err := scanSweet(tx.QueryRowContext(ctx, query, id), sweet); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSweetNotFound
		}
		return nil, fmt.Errorf("lock sweet %d: %w", id, err)
	}

	return sweet, nil
}

// decrementStock decrements quantity by amount only when enough stock remains.
// The condition is evaluated atomically by the store, so a concurrent writer
// can never drive quantity negative.
func decrementStock(ctx context.Context, tx *sql.Tx, id int64, amount int) (*models.Sweet, error) {
	sweet := &models.Sweet{}

	query := `
		UPDATE sweets
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2
		  AND quantity >= $1
		RETURNING ` + sweetColumns

	if err := scanSweet(tx.QueryRowContext(ctx, query, amount, id), sweet); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOutOfStock
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	return sweet, nil
}

// Purchase decrements a sweet's quantity by exactly one. The existence check
// and the decrement share one transaction so concurrent purchases of the last
// unit serialize at the row.
func (s *SQLStore) Purchase(ctx context.Context, id int64) (*models.Sweet, error) {
	var updated *models.Sweet

	err := database.WithRetry(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		sweet, err := lockSweet(ctx, tx, id)
		if err != nil {
			return err
		}

		if sweet.Quantity <= 0 {
			return database.ErrOutOfStock
		}

		updated, err = decrementStock(ctx, tx, id, 1)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Restock adds amount units of stock. Amounts below one are rejected before
// the store is touched; restock is unbounded above.
func (s *SQLStore) Restock(ctx context.Context, id int64, amount int) (*models.Sweet, error) {
	if amount <= 0 {
		return nil, database.ErrInvalidQuantity
	}

	var updated *models.Sweet

	err := database.WithRetry(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := lockSweet(ctx, tx, id); err != nil {
			return err
		}

		sweet := &models.Sweet{}
		query := `
			UPDATE sweets
			SET quantity = quantity + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING ` + sweetColumns

		if err := scanSweet(tx.QueryRowContext(ctx, query, amount, id), sweet); err != nil {
			return fmt.Errorf("restock sweet: %w", err)
		}

		updated = sweet
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Checkout validates and decrements every cart line inside a single
// transaction. Lines are evaluated in caller order and the first offending
// line aborts the whole call; on any failure the rollback leaves every row
// exactly as it was.
func (s *SQLStore) Checkout(ctx context.Context, lines []models.CheckoutLine) error {
	if len(lines) == 0 {
		return database.ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return database.ErrInvalidQuantity
		}
	}

	return database.WithRetry(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, line := range lines {
			sweet, err := lockSweet(ctx, tx, line.SweetID)
			if err != nil {
				if err == database.ErrSweetNotFound {
					return &database.SweetNotFoundError{ID: line.SweetID}
				}
				return err
			}

			if sweet.Quantity < line.Quantity {
				return &database.InsufficientStockError{ID: sweet.ID, Name: sweet.Name}
			}
		}

		for _, line := range lines {
			result, err := tx.ExecContext(ctx,
				`UPDATE sweets
				 SET quantity = quantity - $1, updated_at = NOW()
				 WHERE id = $2
				   AND quantity >= $1`,
				line.Quantity, line.SweetID)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("get rows affected: %w", err)
			}

			// Rows are still locked from the validation pass, so this only
			// trips if the schema constraint itself is violated.
			if rowsAffected == 0 {
				return &database.InsufficientStockError{ID: line.SweetID}
			}
		}

		return nil
	})
}
