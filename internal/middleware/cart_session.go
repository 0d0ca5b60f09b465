package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CartSessionCookie = "cart_sid"
	CtxCartSessionKey = "cart_sid"
)

// CartSession makes sure every cart request carries a session id, issuing a
// new cookie on first contact. The cookie is refreshed so it lives as long as
// the stored cart.
func CartSession(ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(CartSessionCookie); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
			}

			c.SetCookie(&http.Cookie{
				Name:     CartSessionCookie,
				Value:    sid,
				Path:     "/api",
				Expires:  time.Now().Add(ttl),
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(CtxCartSessionKey, sid)
			return next(c)
		}
	}
}

func CartSessionFromContext(c echo.Context) string {
	sid, _ := c.Get(CtxCartSessionKey).(string)
	return sid
}
