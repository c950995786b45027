package maindb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListStoreItems retrieves the full storefront catalog
func (s *PostgresStore) ListStoreItems(ctx context.Context) ([]*StoreItem, error) {
	query := `
		SELECT id, name, description, price, category, created_at
		FROM store_items
		ORDER BY price ASC, name ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get store items: %w", err)
	}
	defer rows.Close()

	items := []*StoreItem{}
	for rows.Next() {
		item := &StoreItem{}
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.Category,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating store items: %w", err)
	}

	return items, nil
}

// PurchaseItem buys an item for a user. Balance deduction and purchase
// insert happen in one transaction; the coins check is part of the
// UPDATE so two concurrent purchases can't overspend.
func (s *PostgresStore) PurchaseItem(ctx context.Context, userID, itemID uuid.UUID) (*Purchase, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	item := &StoreItem{}
	err = tx.QueryRow(ctx,
		`SELECT id, name, description, price, category, created_at FROM store_items WHERE id = $1`,
		itemID,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.Category, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get store item: %w", err)
	}

	var owned bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1 AND item_id = $2)`,
		userID, itemID,
	).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned {
		return nil, ErrAlreadyOwned
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users SET coins = coins - $1, updated_at = $2 WHERE id = $3 AND coins >= $1`,
		item.Price, time.Now(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct coins: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrInsufficientCoins
	}

	purchase := &Purchase{
		ID:        uuid.New(),
		UserID:    userID,
		ItemID:    itemID,
		Price:     item.Price,
		CreatedAt: time.Now(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO purchases (id, user_id, item_id, price, created_at) VALUES ($1, $2, $3, $4, $5)`,
		purchase.ID, purchase.UserID, purchase.ItemID, purchase.Price, purchase.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return purchase, nil
}

// ListUserPurchases retrieves everything a user owns
func (s *PostgresStore) ListUserPurchases(ctx context.Context, userID uuid.UUID) ([]*Purchase, error) {
	query := `
		SELECT id, user_id, item_id, price, created_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchases: %w", err)
	}
	defer rows.Close()

	purchases := []*Purchase{}
	for rows.Next() {
		p := &Purchase{}
		err := rows.Scan(&p.ID, &p.UserID, &p.ItemID, &p.Price, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return purchases, nil
}
