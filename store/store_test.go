package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"sklep/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func TestStore_CreateUser(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()
	hashed := "bcrypt-hash"
	user := models.User{
		ID:          uuid.New(),
		Username:    "alice@example.com",
		DisplayName: "Alice",
		Password:    &hashed,
		Role:        models.RoleUser,
	}

	t.Run("InsertIgnoresConflict", func(t *testing.T) {
		// The upsert-by-ignore clause is what makes double
		// registration a no-op instead of an error.
		mock.ExpectExec(`INSERT INTO users .* ON CONFLICT \(username\) DO NOTHING`).
			WithArgs(user.ID, user.Username, user.DisplayName, user.Password, user.Role).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.CreateUser(ctx, user))
	})

	t.Run("SecondInsertIsNoOp", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users .* ON CONFLICT \(username\) DO NOTHING`).
			WithArgs(user.ID, user.Username, user.DisplayName, user.Password, user.Role).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, s.CreateUser(ctx, user))
	})

	t.Run("StoreUnavailable", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(errors.New("connection refused"))

		err := s.CreateUser(ctx, user)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestStore_ListProducts(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "producer", "name", "description", "price_cents", "quantity", "category_id", "img", "created_at"}).
		AddRow(uuid.New().String(), "Acme", "Newer", "", 1000, 5, 1, nil, time.Now()).
		AddRow(uuid.New().String(), "Acme", "Older", "", 500, 2, 1, nil, time.Now().Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM products ORDER BY created_at DESC`).
		WillReturnRows(rows)

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Newer", products[0].Name)
	assert.Equal(t, int64(1000), products[0].PriceCents)
}

func TestStore_FindPromoCode(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"code", "discount_kind", "discount_value", "active"}).
			AddRow("SAVE10", "percent", 10, true)

		mock.ExpectQuery(`SELECT code, discount_kind, discount_value, active FROM promo_codes WHERE code = \$1`).
			WithArgs("SAVE10").
			WillReturnRows(rows)

		promo, err := s.FindPromoCode(ctx, "SAVE10")
		require.NoError(t, err)
		assert.Equal(t, models.DiscountPercent, promo.Kind)
		assert.Equal(t, int64(10), promo.Value)
		assert.True(t, promo.Active)
	})

	t.Run("Unknown", func(t *testing.T) {
		mock.ExpectQuery(`SELECT code, discount_kind, discount_value, active FROM promo_codes`).
			WithArgs("NOPE").
			WillReturnRows(sqlmock.NewRows([]string{"code", "discount_kind", "discount_value", "active"}))

		_, err := s.FindPromoCode(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_CreatePromoCode(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO promo_codes .* ON CONFLICT \(code\) DO NOTHING`).
		WithArgs("SAVE10", models.DiscountPercent, int64(10), true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	promo := models.PromoCode{Code: "SAVE10", Kind: models.DiscountPercent, Value: 10, Active: true}
	require.NoError(t, s.CreatePromoCode(context.Background(), promo))
}

func TestStore_SetProductQuantity(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE products SET quantity = \$1 WHERE id = \$2`).
		WithArgs(100, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SetProductQuantity(context.Background(), id, 100))
}

func TestStore_ListOrdersForUser(t *testing.T) {
	s, mock := newMockStore(t)
	userID := uuid.New()
	orderID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "total_cents", "created_at", "product_id", "quantity", "price_cents", "name"}).
		AddRow(orderID.String(), 4250, now, uuid.New().String(), 2, 1000, "Widget").
		AddRow(orderID.String(), 4250, now, uuid.New().String(), 1, 500, "Gadget")

	mock.ExpectQuery(`SELECT o.id, o.total_cents, o.created_at,`).
		WithArgs(userID).
		WillReturnRows(rows)

	orders, err := s.ListOrdersForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, orders, 1, "rows for one order collapse into one entry")
	assert.Equal(t, orderID, orders[0].ID)
	assert.Equal(t, int64(4250), orders[0].TotalCents)
	assert.Equal(t, 3, orders[0].ItemCount)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "Widget", orders[0].Items[0].Name)
}
