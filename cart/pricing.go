package cart

import (
	"sklep/models"

	"github.com/google/uuid"
)

const (
	// Flat delivery fee in minor units, waived above the free-delivery
	// threshold or when the cart is empty.
	DeliveryFeeCents      = 2000
	FreeDeliveryOverCents = 500 * 100
)

type Line struct {
	Product       models.Product `json:"product"`
	Quantity      int            `json:"quantity"`
	RowTotalCents int64          `json:"row_total_cents"`
}

type Summary struct {
	Lines         []Line `json:"lines"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

// Summarize groups the cart by product id against the live catalog.
// Prices are already held in minor units, so each row total is exact
// integer arithmetic; ids no longer in the catalog are skipped. Lines
// keep the order in which products first appeared in the cart.
func Summarize(c Cart, products []models.Product) Summary {
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var sum Summary
	seen := make(map[uuid.UUID]int)
	for _, id := range c {
		p, ok := byID[id]
		if !ok {
			continue
		}
		if i, dup := seen[id]; dup {
			sum.Lines[i].Quantity++
			sum.Lines[i].RowTotalCents += p.PriceCents
			sum.SubtotalCents += p.PriceCents
			continue
		}
		seen[id] = len(sum.Lines)
		sum.Lines = append(sum.Lines, Line{Product: p, Quantity: 1, RowTotalCents: p.PriceCents})
		sum.SubtotalCents += p.PriceCents
	}
	return sum
}

type Quote struct {
	SubtotalCents int64  `json:"subtotal_cents"`
	DiscountCents int64  `json:"discount_cents"`
	DeliveryCents int64  `json:"delivery_cents"`
	TotalCents    int64  `json:"total_cents"`
	PromoCode     string `json:"promo_code,omitempty"`
}

// PriceQuote applies an optional promo code and the delivery rule to a
// cart summary. An inactive promo contributes nothing; callers handle
// the unknown-code case before getting here.
func PriceQuote(sum Summary, promo *models.PromoCode) Quote {
	q := Quote{SubtotalCents: sum.SubtotalCents}
	if promo != nil && promo.Active {
		q.PromoCode = promo.Code
		q.DiscountCents = discount(sum.SubtotalCents, *promo)
	}
	q.DeliveryCents = delivery(sum.SubtotalCents)
	q.TotalCents = sum.SubtotalCents - q.DiscountCents + q.DeliveryCents
	return q
}

// discount computes the promo reduction in minor units. Percentages
// round half up; flat amounts are capped at the subtotal so the total
// never goes negative.
func discount(subtotalCents int64, promo models.PromoCode) int64 {
	switch promo.Kind {
	case models.DiscountPercent:
		return (subtotalCents*promo.Value + 50) / 100
	case models.DiscountAmount:
		if promo.Value > subtotalCents {
			return subtotalCents
		}
		return promo.Value
	}
	return 0
}

func delivery(subtotalCents int64) int64 {
	if subtotalCents == 0 || subtotalCents > FreeDeliveryOverCents {
		return 0
	}
	return DeliveryFeeCents
}
