package store

import (
	"context"
	"database/sql"

	"github.com/safar/sweet-shop/internal/models"
	"github.com/shopspring/decimal"
)

// SweetParams carries the mutable fields of a sweet for create and update.
type SweetParams struct {
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// Store is the catalog-store contract consumed by the HTTP layer. Handlers
// depend on this interface so tests can substitute an in-memory double.
type Store interface {
	CreateSweet(ctx context.Context, params SweetParams) (*models.Sweet, error)
	ListSweets(ctx context.Context) ([]models.Sweet, error)
	SearchSweets(ctx context.Context, query string) ([]models.Sweet, error)
	UpdateSweet(ctx context.Context, id int64, params SweetParams) (*models.Sweet, error)
	DeleteSweet(ctx context.Context, id int64) error

	Purchase(ctx context.Context, id int64) (*models.Sweet, error)
	Restock(ctx context.Context, id int64, amount int) (*models.Sweet, error)
	Checkout(ctx context.Context, lines []models.CheckoutLine) error

	CreateUser(ctx context.Context, email, passwordHash, role string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// SQLStore implements Store on top of a postgres connection pool.
type SQLStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const sweetColumns = "id, name, category, description, price, quantity, created_at, updated_at"

func scanSweet(row interface{ Scan(...any) error }, sweet *models.Sweet) error {
	return row.Scan(
		&sweet.ID,
		&sweet.Name,
		&sweet.Category,
		&sweet.Description,
		&sweet.Price,
		&sweet.Quantity,
		&sweet.CreatedAt,
		&sweet.UpdatedAt,
	)
}
