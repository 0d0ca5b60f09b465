package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pratyek/grocery-app/internal/middleware"
	"github.com/pratyek/grocery-app/internal/usecase"
)

type AuthHandler struct {
	uc           *usecase.AuthUsecase
	cookieSecure bool
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{uc: uc, cookieSecure: cookieSecure}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string          `json:"message"`
	User    usecase.UserDTO `json:"user"`
	Token   string          `json:"token"`
}

// RegisterRoutes wires /register, /login, /logout and /user. limiter guards
// the credential endpoints.
func (h *AuthHandler) RegisterRoutes(api *echo.Group, authMW, limiter echo.MiddlewareFunc) {
	api.POST("/register", h.register, limiter)
	api.POST("/login", h.login, limiter)
	api.POST("/logout", h.logout)
	api.GET("/user", h.me, authMW)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	res, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}

	h.setTokenCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusCreated, authResponse{Message: "User registered successfully", User: res.User, Token: res.Token})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	res, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	h.setTokenCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse{Message: "Login successful", User: res.User, Token: res.Token})
}

func (h *AuthHandler) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) me(c echo.Context) error {
	user, err := h.uc.Me(c.Request().Context(), middleware.ActorFromContext(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setTokenCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
