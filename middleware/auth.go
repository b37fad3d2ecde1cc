package middleware

import (
	"context"
	"net/http"
	"net/url"

	"sklep/cookies"
	"sklep/models"
)

type ctxKey string

const userContextKey ctxKey = "user"

// UserSource is the slice of the persistence adapter the gate needs.
type UserSource interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// CurrentUser returns the user attached by Identify or Authorize.
func CurrentUser(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userContextKey).(models.User)
	return u, ok
}

// resolve maps the signed identity cookie to a user record. The full
// user list is re-read and linear-scanned per request; fine at this
// scale, a known bottleneck beyond it.
func resolve(r *http.Request, users UserSource, jar *cookies.Jar) (models.User, bool) {
	username, ok := jar.Read(r, cookies.User)
	if !ok {
		return models.User{}, false
	}
	list, err := users.ListUsers(r.Context())
	if err != nil {
		return models.User{}, false
	}
	for _, u := range list {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

// Identify attaches the resolved user to the request context when the
// identity cookie verifies, and always lets the request through.
func Identify(users UserSource, jar *cookies.Jar) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := resolve(r, users, jar); ok {
				r = r.WithContext(context.WithValue(r.Context(), userContextKey, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize gates a route by role. An empty role set admits any
// authenticated user. Missing or invalid identity, an unknown user or
// a role mismatch all redirect to the login page carrying the original
// URL, never an error status.
func Authorize(users UserSource, jar *cookies.Jar, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := resolve(r, users, jar)
			if !ok || !u.Role.Can(roles...) {
				http.Redirect(w, r, "/login?returnUrl="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, u))
			next.ServeHTTP(w, r)
		})
	}
}
