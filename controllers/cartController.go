package controllers

import (
	"net/http"
	"strings"

	"sklep/cart"
	"sklep/cookies"
	"sklep/utils"
)

// CartView renders the cart summary priced against the live catalog,
// including any applied promo. The promoError cookie is a one-shot
// flag: it is surfaced once and cleared in the same response.
func (c *Controller) CartView(w http.ResponseWriter, r *http.Request) {
	products, err := c.store.ListProducts(r.Context())
	if err != nil {
		storeFailure(w, "list products", err)
		return
	}

	crt := c.readCart(r)
	sum := cart.Summarize(crt, products)
	quote := cart.PriceQuote(sum, c.currentPromo(r))

	payload := map[string]interface{}{
		"items": sum.Lines,
		"quote": quote,
	}
	if msg, ok := c.jar.Read(r, cookies.PromoError); ok {
		payload["promo_error"] = msg
		c.jar.Clear(w, cookies.PromoError)
	}
	utils.SendJSONResponse(w, http.StatusOK, payload)
}

func (c *Controller) CartAdd(w http.ResponseWriter, r *http.Request) {
	id, err := pathProductID(r)
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if _, err := c.store.GetProduct(r.Context(), id); err != nil {
		if isNotFound(err) {
			http.Redirect(w, r, "/shop", http.StatusSeeOther)
			return
		}
		storeFailure(w, "get product", err)
		return
	}
	c.writeCart(w, c.readCart(r).Add(id))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// CartIncrease adds one occurrence only while the cart holds fewer
// units than the product's live stock. Availability is re-checked at
// checkout regardless.
func (c *Controller) CartIncrease(w http.ResponseWriter, r *http.Request) {
	id, err := pathProductID(r)
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := c.store.GetProduct(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		storeFailure(w, "get product", err)
		return
	}
	c.writeCart(w, c.readCart(r).Increase(id, p.Quantity))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (c *Controller) CartDecrease(w http.ResponseWriter, r *http.Request) {
	id, err := pathProductID(r)
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	c.writeCart(w, c.readCart(r).Decrease(id))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (c *Controller) CartRemove(w http.ResponseWriter, r *http.Request) {
	id, err := pathProductID(r)
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	c.writeCart(w, c.readCart(r).Remove(id))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// ApplyPromo validates the submitted code by exact match. An unknown or
// inactive code does not fail the request; it sets the one-shot
// promoError flag and leaves the cart total unchanged.
func (c *Controller) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	code := strings.TrimSpace(r.FormValue("code"))
	if code == "" {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	promo, err := c.store.FindPromoCode(r.Context(), code)
	switch {
	case err != nil && isNotFound(err):
		c.jar.Set(w, cookies.PromoError, "unknown promo code")
	case err != nil:
		storeFailure(w, "find promo code", err)
		return
	case !promo.Active:
		c.jar.Set(w, cookies.PromoError, "promo code is not active")
	default:
		c.jar.Set(w, cookies.PromoCode, promo.Code)
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (c *Controller) RemovePromo(w http.ResponseWriter, r *http.Request) {
	c.jar.Clear(w, cookies.PromoCode)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
