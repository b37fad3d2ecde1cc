package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// PlaceOrder runs one checkout attempt as a single transaction:
// validate stock under row locks, decrement it, then write the order
// and its lines with price snapshots. Either everything commits or
// nothing changes. Locks are taken in sorted product-id order so two
// overlapping carts cannot deadlock; concurrent attempts on the same
// product serialize on its row, so the last unit can only be sold once.
func (s *Store) PlaceOrder(ctx context.Context, userID *uuid.UUID, counts map[uuid.UUID]int, totalCents int64) (uuid.UUID, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, wrap("place order", err)
	}
	defer tx.Rollback()

	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	type line struct {
		id         uuid.UUID
		qty        int
		priceCents int64
	}
	lines := make([]line, 0, len(ids))

	for _, id := range ids {
		var priceCents int64
		var stock int
		err := tx.QueryRowContext(ctx, `
			SELECT price_cents, quantity FROM products
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(&priceCents, &stock)
		if err == sql.ErrNoRows {
			return uuid.Nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return uuid.Nil, wrap("lock product", err)
		}
		if stock < counts[id] {
			return uuid.Nil, fmt.Errorf("product %s: have %d, want %d: %w", id, stock, counts[id], ErrInsufficientStock)
		}
		lines = append(lines, line{id: id, qty: counts[id], priceCents: priceCents})
	}

	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET quantity = quantity - $1 WHERE id = $2
		`, l.qty, l.id); err != nil {
			return uuid.Nil, wrap("decrement stock", err)
		}
	}

	orderID := uuid.New()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_cents) VALUES ($1, $2, $3)
	`, orderID, userID, totalCents); err != nil {
		return uuid.Nil, wrap("insert order", err)
	}

	for _, l := range lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4)
		`, orderID, l.id, l.qty, l.priceCents); err != nil {
			return uuid.Nil, wrap("insert order item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, wrap("commit order", err)
	}
	return orderID, nil
}
