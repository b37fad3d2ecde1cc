package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sklep/cart"
	"sklep/cookies"
	"sklep/models"
	"sklep/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type placedOrder struct {
	userID *uuid.UUID
	counts map[uuid.UUID]int
	total  int64
}

// fakeStore is an in-memory persistence adapter for handler tests.
type fakeStore struct {
	users    []models.User
	products []models.Product
	promos   map[string]models.PromoCode
	placed   []placedOrder
	placeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{promos: map[string]models.PromoCode{}}
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u models.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return nil // upsert-by-ignore
		}
	}
	f.users = append(f.users, u)
	return nil
}

func (f *fakeStore) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeStore) ListProducts(context.Context) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id uuid.UUID) (models.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, store.ErrNotFound
}

func (f *fakeStore) CreateProduct(_ context.Context, p models.Product) error {
	f.products = append(f.products, p)
	return nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	out := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	f.products = out
	return nil
}

func (f *fakeStore) SetProductQuantity(_ context.Context, id uuid.UUID, qty int) error {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].Quantity = qty
		}
	}
	return nil
}

func (f *fakeStore) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Books"}}, nil
}

func (f *fakeStore) ListPromoCodes(context.Context) ([]models.PromoCode, error) {
	promos := make([]models.PromoCode, 0, len(f.promos))
	for _, p := range f.promos {
		promos = append(promos, p)
	}
	return promos, nil
}

func (f *fakeStore) FindPromoCode(_ context.Context, code string) (models.PromoCode, error) {
	p, ok := f.promos[code]
	if !ok {
		return models.PromoCode{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreatePromoCode(_ context.Context, promo models.PromoCode) error {
	if _, ok := f.promos[promo.Code]; ok {
		return nil
	}
	f.promos[promo.Code] = promo
	return nil
}

func (f *fakeStore) DeletePromoCode(_ context.Context, code string) error {
	delete(f.promos, code)
	return nil
}

func (f *fakeStore) PlaceOrder(_ context.Context, userID *uuid.UUID, counts map[uuid.UUID]int, totalCents int64) (uuid.UUID, error) {
	if f.placeErr != nil {
		return uuid.Nil, f.placeErr
	}
	f.placed = append(f.placed, placedOrder{userID: userID, counts: counts, total: totalCents})
	return uuid.New(), nil
}

func (f *fakeStore) ListOrdersForUser(context.Context, uuid.UUID) ([]models.OrderWithItems, error) {
	return nil, nil
}

func newTestController(t *testing.T) (*Controller, *fakeStore, *cookies.Jar) {
	t.Helper()
	st := newFakeStore()
	jar := cookies.NewJar([]byte("test-secret"))
	ctrl := New(st, jar, &oauth2.Config{}, "http://localhost:8000", []string{"root@example.com"})
	return ctrl, st, jar
}

// carry copies the Set-Cookie headers of a previous response onto req.
func carry(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			req.AddCookie(c)
		}
	}
	return req
}

func cartCookieRequest(t *testing.T, jar *cookies.Jar, target string, crt cart.Cart) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, jar.Set(rec, cookies.Cart, crt.Encode()))
	return carry(httptest.NewRequest(http.MethodGet, target, nil), rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
