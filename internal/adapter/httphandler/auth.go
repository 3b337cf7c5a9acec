package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

const secondsPerDay = 24 * 60 * 60

type CookieConfig struct {
	Days   int
	Secure bool
}

type AuthHandler struct {
	auth   port.Authenticator
	cookie CookieConfig
}

func RegisterAuth(
	public gin.IRouter, auth port.Authenticator, cookie CookieConfig,
) {
	h := AuthHandler{auth, cookie}
	public.POST("/signup", h.Signup)
	public.POST("/login", h.Login)
	public.GET("/logout", h.Logout)
}

func (h AuthHandler) Signup(c *gin.Context) {
	const op = "AuthHandler.Signup"
	log := slog.With("op", op)

	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, log, badRequest("invalid JSON data"), nil)
		return
	}

	s, err := h.auth.Signup(c.Request.Context(), domain.Signup{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, log, err, errText{
			domain.ErrConflict: "user already exists",
		})
		return
	}

	log.Info("user signed up", "userID", s.UserID)
	c.JSON(http.StatusOK, SessionResponse{
		Success: true, Token: s.Token, UserID: s.UserID,
	})
}

func (h AuthHandler) Login(c *gin.Context) {
	const op = "AuthHandler.Login"
	log := slog.With("op", op)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, log, badRequest("invalid JSON data"), nil)
		return
	}

	s, err := h.auth.Login(c.Request.Context(), domain.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, log, err, errText{
			domain.ErrUnauthorized: "invalid email or password",
		})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		tokenCookie, s.Token, h.cookie.Days*secondsPerDay,
		"/", "", h.cookie.Secure, true,
	)
	c.JSON(http.StatusOK, SessionResponse{
		Success: true, Token: s.Token, UserID: s.UserID,
	})
}

func (h AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, "logged out")
}
