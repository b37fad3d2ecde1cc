// Package cookies is the signing boundary for everything the browser
// carries: identity, the cart multiset, the applied promo code and the
// one-shot promo error flag. Values are wrapped in HS256-signed tokens;
// a failed signature reads the same as an absent cookie.
package cookies

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	User       = "user"
	Cart       = "cart"
	PromoCode  = "promoCode"
	PromoError = "promoError"
)

const maxAge = 30 * 24 * time.Hour

type payloadClaims struct {
	Payload string `json:"payload"`
	jwt.RegisteredClaims
}

type Jar struct {
	secret []byte
}

func NewJar(secret []byte) *Jar {
	return &Jar{secret: secret}
}

func (j *Jar) Set(w http.ResponseWriter, name, payload string) error {
	claims := payloadClaims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(maxAge)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
	return nil
}

// Read returns the verified payload of the named cookie. A missing,
// expired or tampered cookie reports ok=false.
func (j *Jar) Read(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	token, err := jwt.ParseWithClaims(c.Value, &payloadClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(*payloadClaims)
	if !ok {
		return "", false
	}
	return claims.Payload, true
}

func (j *Jar) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
