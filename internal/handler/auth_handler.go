package handler

import (
	"net/http"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/auth
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/auth")

	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/forgot-password", h.forgotPassword)
	g.GET("/verify-reset-token", h.verifyResetToken)
	g.POST("/reset-password", h.resetPassword)

	g.POST("/logout", h.logout, guards.User...)
	g.GET("/me", h.me, guards.User...)
	g.GET("/verify", h.verify, guards.User...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusCreated, out, "Usuario registrado exitosamente")
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Login exitoso")
}

// token_versionを上げて発行済みトークンを全部無効にする
func (h *AuthHandler) logout(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	if err := h.uc.Logout(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Sesión cerrada exitosamente")
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "")
}

func (h *AuthHandler) verify(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, map[string]any{"valid": true, "user": out}, "")
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if req.Email == "" {
		return badRequest(c, "El email es requerido")
	}
	if err := h.uc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Correo de recuperación enviado")
}

func (h *AuthHandler) verifyResetToken(c echo.Context) error {
	if err := h.uc.VerifyResetToken(c.Request().Context(), c.QueryParam("token")); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, map[string]bool{"valid": true}, "")
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.uc.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Contraseña actualizada exitosamente")
}
