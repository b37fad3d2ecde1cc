package controllers

import (
	"errors"
	"net/http"

	"sklep/cart"
	"sklep/cookies"
	"sklep/logger"
	"sklep/middleware"
	"sklep/store"
	"sklep/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutView quotes the current cart: line totals, promo discount,
// delivery fee and the amount to pay.
func (c *Controller) CheckoutView(w http.ResponseWriter, r *http.Request) {
	crt := c.readCart(r)
	if crt.Empty() {
		http.Redirect(w, r, "/cart", http.StatusFound)
		return
	}
	products, err := c.store.ListProducts(r.Context())
	if err != nil {
		storeFailure(w, "list products", err)
		return
	}
	sum := cart.Summarize(crt, products)
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"items": sum.Lines,
		"quote": cart.PriceQuote(sum, c.currentPromo(r)),
	})
}

// CheckoutSubmit converts the cart into an order inside one atomic
// attempt. Stock conflicts and vanished products abort the whole
// attempt and send the buyer back to the cart with nothing changed; on
// success the cart and promo cookies are cleared.
func (c *Controller) CheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	crt := c.readCart(r)
	if crt.Empty() {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	products, err := c.store.ListProducts(r.Context())
	if err != nil {
		storeFailure(w, "list products", err)
		return
	}

	sum := cart.Summarize(crt, products)
	quote := cart.PriceQuote(sum, c.currentPromo(r))

	// Only lines that still exist in the catalog take part in the
	// attempt; Summarize already dropped stale ids.
	counts := make(map[uuid.UUID]int, len(sum.Lines))
	for _, line := range sum.Lines {
		counts[line.Product.ID] = line.Quantity
	}
	if len(counts) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	var userID *uuid.UUID
	if u, ok := middleware.CurrentUser(r.Context()); ok {
		userID = &u.ID
	}

	orderID, err := c.store.PlaceOrder(r.Context(), userID, counts, quote.TotalCents)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientStock) || errors.Is(err, store.ErrNotFound) {
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		storeFailure(w, "place order", err)
		return
	}

	logger.L().Info("order placed",
		zap.String("order_id", orderID.String()),
		zap.Int64("total_cents", quote.TotalCents),
	)
	c.jar.Clear(w, cookies.Cart)
	c.jar.Clear(w, cookies.PromoCode)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
