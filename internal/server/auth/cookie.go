package auth

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// CookieConfig controls the attributes of the session cookie. HttpOnly is
// always set.
type CookieConfig struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieConfig) normalize() CookieConfig {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetSessionCookie stores token in the access_token cookie until expiresAt.
func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, opts CookieConfig) {
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    token,
		Path:     opts.Path,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearSessionCookie tells the client to drop the access_token cookie.
func ClearSessionCookie(w http.ResponseWriter, opts CookieConfig) {
	opts = opts.normalize()
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     opts.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// TokenFromRequest returns the session token carried by r, or "".
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(common.AccessTokenCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
