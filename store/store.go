package store

import (
	"context"
	"time"

	"sklep/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var QB = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	userColumns    = []string{"id", "username", "display_name", "password", "role", "created_at"}
	productColumns = []string{"id", "producer", "name", "description", "price_cents", "quantity", "category_id", "img", "created_at"}
)

// Store is the persistence adapter over Postgres. Handlers receive it
// as an injected dependency; there is no package-global connection.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

/* ---------------- users ---------------- */

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	query, args, err := QB.Select(userColumns...).From("users").ToSql()
	if err != nil {
		return nil, wrap("list users", err)
	}
	var users []models.User
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

// CreateUser inserts a user record. A second registration with the same
// username is a silent no-op, not an error.
func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	query, args, err := QB.Insert("users").
		Columns("id", "username", "display_name", "password", "role").
		Values(u.ID, u.Username, u.DisplayName, u.Password, u.Role).
		Suffix("ON CONFLICT (username) DO NOTHING").
		ToSql()
	if err != nil {
		return wrap("create user", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("create user", err)
	}
	return nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	query, args, err := QB.Select(userColumns...).From("users").
		Where(squirrel.Eq{"username": username}).ToSql()
	if err != nil {
		return models.User{}, wrap("find user", err)
	}
	var u models.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		return models.User{}, wrap("find user", err)
	}
	return u, nil
}

/* ---------------- products ---------------- */

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	query, args, err := QB.Select(productColumns...).From("products").
		OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, wrap("list products", err)
	}
	var products []models.Product
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, wrap("list products", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	query, args, err := QB.Select(productColumns...).From("products").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Product{}, wrap("get product", err)
	}
	var p models.Product
	if err := s.db.GetContext(ctx, &p, query, args...); err != nil {
		return models.Product{}, wrap("get product", err)
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p models.Product) error {
	query, args, err := QB.Insert("products").
		Columns("id", "producer", "name", "description", "price_cents", "quantity", "category_id", "img").
		Values(p.ID, p.Producer, p.Name, p.Description, p.PriceCents, p.Quantity, p.CategoryID, p.Img).
		ToSql()
	if err != nil {
		return wrap("create product", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("create product", err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	query, args, err := QB.Delete("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return wrap("delete product", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("delete product", err)
	}
	return nil
}

func (s *Store) SetProductQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	query, args, err := QB.Update("products").
		Set("quantity", qty).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return wrap("set product quantity", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("set product quantity", err)
	}
	return nil
}

/* ---------------- categories ---------------- */

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	query, args, err := QB.Select("id", "name").From("categories").
		OrderBy("name").ToSql()
	if err != nil {
		return nil, wrap("list categories", err)
	}
	var categories []models.Category
	if err := s.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, wrap("list categories", err)
	}
	return categories, nil
}

/* ---------------- promo codes ---------------- */

func (s *Store) ListPromoCodes(ctx context.Context) ([]models.PromoCode, error) {
	query, args, err := QB.Select("code", "discount_kind", "discount_value", "active").
		From("promo_codes").ToSql()
	if err != nil {
		return nil, wrap("list promo codes", err)
	}
	var promos []models.PromoCode
	if err := s.db.SelectContext(ctx, &promos, query, args...); err != nil {
		return nil, wrap("list promo codes", err)
	}
	return promos, nil
}

func (s *Store) FindPromoCode(ctx context.Context, code string) (models.PromoCode, error) {
	query, args, err := QB.Select("code", "discount_kind", "discount_value", "active").
		From("promo_codes").Where(squirrel.Eq{"code": code}).ToSql()
	if err != nil {
		return models.PromoCode{}, wrap("find promo code", err)
	}
	var promo models.PromoCode
	if err := s.db.GetContext(ctx, &promo, query, args...); err != nil {
		return models.PromoCode{}, wrap("find promo code", err)
	}
	return promo, nil
}

// CreatePromoCode is a silent no-op when the code already exists.
func (s *Store) CreatePromoCode(ctx context.Context, promo models.PromoCode) error {
	query, args, err := QB.Insert("promo_codes").
		Columns("code", "discount_kind", "discount_value", "active").
		Values(promo.Code, promo.Kind, promo.Value, promo.Active).
		Suffix("ON CONFLICT (code) DO NOTHING").
		ToSql()
	if err != nil {
		return wrap("create promo code", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("create promo code", err)
	}
	return nil
}

func (s *Store) DeletePromoCode(ctx context.Context, code string) error {
	query, args, err := QB.Delete("promo_codes").Where(squirrel.Eq{"code": code}).ToSql()
	if err != nil {
		return wrap("delete promo code", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrap("delete promo code", err)
	}
	return nil
}

/* ---------------- orders ---------------- */

// ListOrdersForUser returns the user's orders newest first, each with
// its lines joined to the product name and an aggregate item count.
func (s *Store) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]models.OrderWithItems, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.total_cents, o.created_at,
		       oi.product_id, oi.quantity, oi.price_cents, p.name
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id
	`, userID)
	if err != nil {
		return nil, wrap("list orders", err)
	}
	defer rows.Close()

	var orders []models.OrderWithItems
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id        uuid.UUID
			total     int64
			createdAt time.Time
			item      models.PurchasedItem
		)
		if err := rows.Scan(&id, &total, &createdAt, &item.ProductID, &item.Quantity, &item.PriceCents, &item.Name); err != nil {
			return nil, wrap("list orders", err)
		}
		i, ok := index[id]
		if !ok {
			i = len(orders)
			index[id] = i
			orders = append(orders, models.OrderWithItems{ID: id, TotalCents: total, CreatedAt: createdAt})
		}
		orders[i].Items = append(orders[i].Items, item)
		orders[i].ItemCount += item.Quantity
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list orders", err)
	}
	return orders, nil
}
