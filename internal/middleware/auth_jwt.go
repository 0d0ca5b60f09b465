package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pratyek/grocery-app/internal/auth"
	"github.com/pratyek/grocery-app/internal/domain/model"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string, converted back to model.Role by ActorFromContext

	TokenCookieName = "token"
)

type TokenResolver interface {
	Resolve(raw string) (auth.Actor, error)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AuthJWT requires a valid token from the Authorization header or the
// token cookie and stores the actor on the context.
func AuthJWT(tokens TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication_error", Message: "Authentication required"})
			}

			actor, err := tokens.Resolve(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication_error", Message: "Invalid token"})
			}

			setActor(c, actor)
			return next(c)
		}
	}
}

// OptionalAuth stores the actor when a valid token is present and lets the
// request through either way.
func OptionalAuth(tokens TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := tokenFromRequest(c); raw != "" {
				if actor, err := tokens.Resolve(raw); err == nil {
					setActor(c, actor)
				}
			}
			return next(c)
		}
	}
}

// ActorFromContext returns the zero Actor for anonymous requests.
func ActorFromContext(c echo.Context) auth.Actor {
	id, _ := c.Get(CtxUserIDKey).(int64)
	actor := auth.Actor{UserID: id}
	if role, ok := c.Get(CtxUserRoleKey).(string); ok {
		actor.Role = model.Role(role)
	}
	return actor
}

func setActor(c echo.Context, a auth.Actor) {
	c.Set(CtxUserIDKey, a.UserID)
	c.Set(CtxUserRoleKey, string(a.Role))
}

// header wins over cookie
func tokenFromRequest(c echo.Context) string {
	if authz := c.Request().Header.Get("Authorization"); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if ck, err := c.Cookie(TokenCookieName); err == nil {
		return ck.Value
	}
	return ""
}
