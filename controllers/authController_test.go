package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"sklep/cookies"
	"sklep/models"
	"sklep/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formPost(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegister(t *testing.T) {
	form := url.Values{
		"username": {"alice@example.com"},
		"password": {"s3cret"},
		"name":     {"Alice"},
	}

	t.Run("CreatesUserAndRedirects", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)
		rec := httptest.NewRecorder()

		ctrl.Register(rec, formPost("/register", form))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		require.Len(t, st.users, 1)
		assert.Equal(t, models.RoleUser, st.users[0].Role)
		require.NotNil(t, st.users[0].Password)
		assert.NoError(t, utils.CheckPassword(*st.users[0].Password, "s3cret"))
	})

	t.Run("DuplicateRegistrationIsNoOp", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			ctrl.Register(rec, formPost("/register", form))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
		}
		assert.Len(t, st.users, 1, "exactly one record after registering twice")
	})

	t.Run("AllowlistedUsernameBecomesAdmin", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)
		admin := url.Values{
			"username": {"root@example.com"},
			"password": {"s3cret"},
			"name":     {"Root"},
		}
		rec := httptest.NewRecorder()

		ctrl.Register(rec, formPost("/register", admin))

		require.Len(t, st.users, 1)
		assert.Equal(t, models.RoleAdmin, st.users[0].Role)
	})

	t.Run("BlankFieldsRejected", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)
		rec := httptest.NewRecorder()

		ctrl.Register(rec, formPost("/register", url.Values{"username": {"x"}}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, st.users)
	})
}

func TestLogin(t *testing.T) {
	newUser := func(t *testing.T, ctrl *Controller, st *fakeStore) {
		t.Helper()
		rec := httptest.NewRecorder()
		ctrl.Register(rec, formPost("/register", url.Values{
			"username": {"alice@example.com"},
			"password": {"s3cret"},
			"name":     {"Alice"},
		}))
		require.Len(t, st.users, 1)
	}

	t.Run("GoodPasswordSetsIdentityCookie", func(t *testing.T) {
		ctrl, st, jar := newTestController(t)
		newUser(t, ctrl, st)

		rec := httptest.NewRecorder()
		ctrl.Login(rec, formPost("/login", url.Values{
			"username": {"alice@example.com"},
			"password": {"s3cret"},
		}))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		readBack := carry(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		username, ok := jar.Read(readBack, cookies.User)
		require.True(t, ok)
		assert.Equal(t, "alice@example.com", username)
	})

	t.Run("ReturnURLWins", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)
		newUser(t, ctrl, st)

		rec := httptest.NewRecorder()
		ctrl.Login(rec, formPost("/login?returnUrl=%2Faccount", url.Values{
			"username": {"alice@example.com"},
			"password": {"s3cret"},
		}))

		assert.Equal(t, "/account", rec.Header().Get("Location"))
	})

	t.Run("OffsiteReturnURLIgnored", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)
		newUser(t, ctrl, st)

		rec := httptest.NewRecorder()
		ctrl.Login(rec, formPost("/login?returnUrl=https%3A%2F%2Fevil.example", url.Values{
			"username": {"alice@example.com"},
			"password": {"s3cret"},
		}))

		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("WrongPasswordRejected", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)
		newUser(t, ctrl, st)

		rec := httptest.NewRecorder()
		ctrl.Login(rec, formPost("/login", url.Values{
			"username": {"alice@example.com"},
			"password": {"wrong"},
		}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("UnknownUserRejected", func(t *testing.T) {
		ctrl, _, _ := newTestController(t)
		rec := httptest.NewRecorder()

		ctrl.Login(rec, formPost("/login", url.Values{
			"username": {"ghost@example.com"},
			"password": {"s3cret"},
		}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("OAuthOnlyAccountHasNoPassword", func(t *testing.T) {
		ctrl, st, _ := newTestController(t)
		st.users = []models.User{{Username: "oauth@example.com", Password: nil, Role: models.RoleUser}}

		rec := httptest.NewRecorder()
		ctrl.Login(rec, formPost("/login", url.Values{
			"username": {"oauth@example.com"},
			"password": {"anything"},
		}))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	rec := httptest.NewRecorder()

	ctrl.Logout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookies.User && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestCallbackWithoutCode(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	rec := httptest.NewRecorder()

	ctrl.Callback(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
