package controllers

import (
	"net/http"

	"sklep/middleware"
	"sklep/utils"
)

func (c *Controller) Home(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"message": "sklep storefront",
	}
	if u, ok := middleware.CurrentUser(r.Context()); ok {
		payload["user"] = u.DisplayName
	}
	utils.SendJSONResponse(w, http.StatusOK, payload)
}

// Shop lists the catalog newest-first together with the category
// reference data.
func (c *Controller) Shop(w http.ResponseWriter, r *http.Request) {
	products, err := c.store.ListProducts(r.Context())
	if err != nil {
		storeFailure(w, "list products", err)
		return
	}
	categories, err := c.store.ListCategories(r.Context())
	if err != nil {
		storeFailure(w, "list categories", err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"products":   products,
		"categories": categories,
	})
}

// Account shows the signed-in user's profile and order history. The
// route is behind Authorize, so the context user is always present.
func (c *Controller) Account(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	orders, err := c.store.ListOrdersForUser(r.Context(), u.ID)
	if err != nil {
		storeFailure(w, "list orders", err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"username":     u.Username,
		"display_name": u.DisplayName,
		"role":         u.Role,
		"orders":       orders,
	})
}
