package handler

import (
	"net/http"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/users（本人 or 管理者）
type UserHandler struct {
	uc *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *UserHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/users", guards.User...)
	g.PUT("/:id", h.updateProfile)
	g.PUT("/:id/password", h.changePassword)
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	actorID, role, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID inválido")
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), actorID, role, id, req.Name, req.Email)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Perfil actualizado exitosamente")
}

func (h *UserHandler) changePassword(c echo.Context) error {
	actorID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID inválido")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return badRequest(c, "Contraseña actual y nueva son requeridas")
	}

	if err := h.uc.ChangePassword(c.Request().Context(), actorID, id, req.CurrentPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Contraseña actualizada exitosamente")
}
