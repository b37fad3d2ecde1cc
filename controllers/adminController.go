package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sklep/logger"
	"sklep/models"
	"sklep/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Panel lists everything the admin screens manage.
func (c *Controller) Panel(w http.ResponseWriter, r *http.Request) {
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
	promos, err := c.store.ListPromoCodes(r.Context())
	if err != nil {
		storeFailure(w, "list promo codes", err)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"products":    products,
		"categories":  categories,
		"promo_codes": promos,
	})
}

func (c *Controller) AddProduct(w http.ResponseWriter, r *http.Request) {
	// Limit to 10 MB; plain form posts without an image are fine too.
	if err := r.ParseMultipartForm(10 << 20); err != nil && err != http.ErrNotMultipart {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" || r.FormValue("price") == "" {
		utils.HandleError(w, http.StatusBadRequest, "make sure you fill all fields")
		return
	}

	priceCents, err := models.ParseCents(r.FormValue("price"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid price")
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		utils.HandleError(w, http.StatusBadRequest, "invalid quantity")
		return
	}
	categoryID, err := strconv.Atoi(r.FormValue("category_id"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid category")
		return
	}

	// Optional product image
	var img *string
	if file, handler, err := r.FormFile("img"); err == nil {
		defer file.Close()
		imgPath, err := utils.SaveImageFile(file, "products", handler.Filename)
		if err != nil {
			logger.L().Error("save image", zap.Error(err))
			utils.HandleError(w, http.StatusInternalServerError, "failed to save image")
			return
		}
		imgPath = strings.ReplaceAll(imgPath, "\\", "/")
		uri := fmt.Sprintf("%s/%s", c.domain, imgPath)
		img = &uri
	}

	product := models.Product{
		ID:          uuid.New(),
		Producer:    strings.TrimSpace(r.FormValue("producer")),
		Name:        name,
		Description: r.FormValue("description"),
		PriceCents:  priceCents,
		Quantity:    quantity,
		CategoryID:  categoryID,
		Img:         img,
	}
	if err := c.store.CreateProduct(r.Context(), product); err != nil {
		storeFailure(w, "create product", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (c *Controller) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	// Fetch first so the stored image can be removed alongside the row.
	product, err := c.store.GetProduct(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		storeFailure(w, "get product", err)
		return
	}
	if product.Img != nil {
		imgPath := strings.TrimPrefix(*product.Img, c.domain+"/")
		if err := utils.DeleteImageFile(imgPath); err != nil {
			logger.L().Warn("delete image", zap.String("path", imgPath), zap.Error(err))
		}
	}

	if err := c.store.DeleteProduct(r.Context(), id); err != nil {
		storeFailure(w, "delete product", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (c *Controller) SetQuantity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		utils.HandleError(w, http.StatusBadRequest, "invalid quantity")
		return
	}
	if err := c.store.SetProductQuantity(r.Context(), id, quantity); err != nil {
		storeFailure(w, "set product quantity", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// AddPromo creates a typed promo code: a percentage of the subtotal or
// a flat amount entered in display form. Duplicate codes are a silent
// no-op.
func (c *Controller) AddPromo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	code := strings.TrimSpace(r.FormValue("code"))
	if code == "" {
		utils.HandleError(w, http.StatusBadRequest, "promo code is required")
		return
	}

	kind := models.DiscountKind(r.FormValue("kind"))
	if kind == "" {
		kind = models.DiscountPercent
	}

	var value int64
	switch kind {
	case models.DiscountPercent:
		v, err := strconv.ParseInt(r.FormValue("value"), 10, 64)
		if err != nil || v < 0 || v > 100 {
			utils.HandleError(w, http.StatusBadRequest, "percent discount must be between 0 and 100")
			return
		}
		value = v
	case models.DiscountAmount:
		v, err := models.ParseCents(r.FormValue("value"))
		if err != nil {
			utils.HandleError(w, http.StatusBadRequest, "invalid discount amount")
			return
		}
		value = v
	default:
		utils.HandleError(w, http.StatusBadRequest, "unknown discount kind")
		return
	}

	promo := models.PromoCode{Code: code, Kind: kind, Value: value, Active: true}
	if err := c.store.CreatePromoCode(r.Context(), promo); err != nil {
		storeFailure(w, "create promo code", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (c *Controller) DeletePromo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	code := strings.TrimSpace(r.FormValue("code"))
	if code == "" {
		utils.HandleError(w, http.StatusBadRequest, "promo code is required")
		return
	}
	if err := c.store.DeletePromoCode(r.Context(), code); err != nil {
		storeFailure(w, "delete promo code", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
