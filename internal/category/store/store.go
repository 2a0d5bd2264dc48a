package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindCategory(ctx context.Context, merchant string) (string, error) {
	query := `
		SELECT preferred_category
		FROM category_mappings
		WHERE $1 ILIKE '%' || merchant_pattern || '%'
		ORDER BY LENGTH(merchant_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, merchant).Scan(&preferred)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", fmt.Errorf("finding category: %w", err)
	}

	return preferred, nil
}

func (s *Store) CreateMapping(ctx context.Context, merchantPattern, preferredCategory string) error {
	query := `
		INSERT INTO category_mappings (merchant_pattern, preferred_category, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, merchantPattern, preferredCategory)
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}
