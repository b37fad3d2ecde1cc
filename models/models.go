package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. Assigned once at account
// creation from the admin allowlist and never changed afterwards.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Can reports whether a holder of role r satisfies a route's required
// role set. An empty set means any authenticated user qualifies.
func (r Role) Can(required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, req := range required {
		if r == req {
			return true
		}
	}
	return false
}

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Password    *string   `json:"-" db:"password"` // nil for OAuth-only accounts
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Producer    string    `json:"producer" db:"producer"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	Quantity    int       `json:"quantity" db:"quantity"`
	CategoryID  int       `json:"category_id" db:"category_id"`
	Img         *string   `json:"img,omitempty" db:"img"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Price renders the stored minor-unit amount in display form.
func (p Product) Price() string {
	return FormatCents(p.PriceCents)
}

type Category struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// DiscountKind is the typed promo model: a percentage of the subtotal
// or a flat amount in minor units.
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountAmount  DiscountKind = "amount"
)

type PromoCode struct {
	Code   string       `json:"code" db:"code"`
	Kind   DiscountKind `json:"discount_kind" db:"discount_kind"`
	Value  int64        `json:"discount_value" db:"discount_value"`
	Active bool         `json:"active" db:"active"`
}

type Order struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     *uuid.UUID `json:"user_id" db:"user_id"` // nil for guest checkout
	TotalCents int64      `json:"total_cents" db:"total_cents"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// OrderItem snapshots the product price at purchase time; it is not a
// live reference to Product.PriceCents.
type OrderItem struct {
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	PriceCents int64     `json:"price_cents" db:"price_cents"`
}

// PurchasedItem is an order line joined to its product name for the
// account page.
type PurchasedItem struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
}

type OrderWithItems struct {
	ID         uuid.UUID       `json:"id"`
	TotalCents int64           `json:"total_cents"`
	CreatedAt  time.Time       `json:"created_at"`
	ItemCount  int             `json:"item_count"`
	Items      []PurchasedItem `json:"items"`
}
