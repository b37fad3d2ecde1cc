package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"sklep/cart"
	"sklep/cookies"
	"sklep/logger"
	"sklep/models"
	"sklep/store"
	"sklep/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Store is the slice of the persistence adapter the handlers use.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetProductQuantity(ctx context.Context, id uuid.UUID, qty int) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListPromoCodes(ctx context.Context) ([]models.PromoCode, error)
	FindPromoCode(ctx context.Context, code string) (models.PromoCode, error)
	CreatePromoCode(ctx context.Context, promo models.PromoCode) error
	DeletePromoCode(ctx context.Context, code string) error
	PlaceOrder(ctx context.Context, userID *uuid.UUID, counts map[uuid.UUID]int, totalCents int64) (uuid.UUID, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]models.OrderWithItems, error)
}

type Controller struct {
	store  Store
	jar    *cookies.Jar
	oauth  *oauth2.Config
	domain string
	admins map[string]bool
}

func New(st Store, jar *cookies.Jar, oauth *oauth2.Config, domain string, adminEmails []string) *Controller {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.TrimSpace(e); e != "" {
			admins[e] = true
		}
	}
	return &Controller{store: st, jar: jar, oauth: oauth, domain: domain, admins: admins}
}

// roleFor decides the role at account creation from the static admin
// allowlist. Roles never change afterwards.
func (c *Controller) roleFor(username string) models.Role {
	if c.admins[username] {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (c *Controller) readCart(r *http.Request) cart.Cart {
	payload, ok := c.jar.Read(r, cookies.Cart)
	if !ok {
		return nil
	}
	return cart.Decode(payload)
}

func (c *Controller) writeCart(w http.ResponseWriter, crt cart.Cart) {
	if err := c.jar.Set(w, cookies.Cart, crt.Encode()); err != nil {
		logger.L().Error("set cart cookie", zap.Error(err))
	}
}

// currentPromo resolves the promo cookie to a live promo code, or nil
// when no promo is applied or the code has since been deleted.
func (c *Controller) currentPromo(r *http.Request) *models.PromoCode {
	code, ok := c.jar.Read(r, cookies.PromoCode)
	if !ok {
		return nil
	}
	promo, err := c.store.FindPromoCode(r.Context(), code)
	if err != nil {
		return nil
	}
	return &promo
}

// storeFailure logs the detail server-side and surfaces a generic 500.
func storeFailure(w http.ResponseWriter, op string, err error) {
	logger.L().Error(op, zap.Error(err))
	utils.HandleError(w, http.StatusInternalServerError, "internal server error")
}

func pathProductID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
