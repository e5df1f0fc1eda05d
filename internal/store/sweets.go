package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/models"
)

func (s *SQLStore) CreateSweet(ctx context.Context, params SweetParams) (*models.Sweet, error) {
	sweet := &models.Sweet{}

	query := `
		INSERT INTO sweets (name, category, description, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + sweetColumns

	row := s.db.QueryRowContext(ctx, query,
		params.Name, params.Category, params.Description, params.Price, params.Quantity)
	if err := scanSweet(row, sweet); err != nil {
		return nil, fmt.Errorf("create sweet: %w", err)
	}

	return sweet, nil
}

func (s *SQLStore) GetSweet(ctx context.Context, id int64) (*models.Sweet, error) {
	sweet := &models.Sweet{}

	query := `SELECT ` + sweetColumns + ` FROM sweets WHERE id = $1`

	if err := scanSweet(s.db.QueryRowContext(ctx, query, id), sweet); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSweetNotFound
		}
		return nil, fmt.Errorf("get sweet: %w", err)
	}

	return sweet, nil
}

func (s *SQLStore) ListSweets(ctx context.Context) ([]models.Sweet, error) {
	query := `SELECT ` + sweetColumns + ` FROM sweets ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	defer rows.Close()

	return collectSweets(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike backslash-escapes LIKE metacharacters so the pattern matches
// the input literally.
func escapeLike(query string) string {
	return likeEscaper.Replace(query)
}

// SearchSweets matches the query as a literal, case-sensitive substring of
// name or category. User-supplied % and _ carry no wildcard meaning.
func (s *SQLStore) SearchSweets(ctx context.Context, query string) ([]models.Sweet, error) {
	stmt := `
		SELECT ` + sweetColumns + `
		FROM sweets
		WHERE name LIKE '%' || $1 || '%' ESCAPE '\'
		   OR category LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, stmt, escapeLike(query))
	if err != nil {
		return nil, fmt.Errorf("search sweets: %w", err)
	}
	defer rows.Close()

	return collectSweets(rows)
}

func (s *SQLStore) UpdateSweet(ctx context.Context, id int64, params SweetParams) (*models.Sweet, error) {
	sweet := &models.Sweet{}

	query := `
		UPDATE sweets
		SET name = $1, category = $2, description = $3, price = $4, quantity = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + sweetColumns

	row := s.db.QueryRowContext(ctx, query,
		params.Name, params.Category, params.Description, params.Price, params.Quantity, id)
	if err := scanSweet(row, sweet); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrSweetNotFound
		}
		return nil, fmt.Errorf("update sweet: %w", err)
	}

	return sweet, nil
}

func (s *SQLStore) DeleteSweet(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sweets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrSweetNotFound
	}

	return nil
}

func collectSweets(rows *sql.Rows) ([]models.Sweet, error) {
	sweets := []models.Sweet{}
	for rows.Next() {
		var sweet models.Sweet
		if err := scanSweet(rows, &sweet); err != nil {
			return nil, fmt.Errorf("scan sweet: %w", err)
		}
		sweets = append(sweets, sweet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return sweets, nil
}
