package handler

import (
	"net/http"
	"strconv"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/admin/users と /api/admin/audit-logs
type AdminUserHandler struct {
	uc *usecase.AdminUserUsecase
}

func NewAdminUserHandler(uc *usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type adminUpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	// ★ /admin 配下は全部「JWT必須 + token_version一致 + admin限定」
	admin := api.Group("/admin", guards.Admin...)

	admin.GET("/users", h.list)
	admin.GET("/users/:id", h.get)
	admin.PUT("/users/:id", h.update)
	admin.DELETE("/users/:id", h.delete)
	admin.POST("/users/:id/force-logout", h.forceLogout)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return badRequest(c, "Página no válida")
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, "Límite no válido")
	}

	out, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	n := len(out.Users)
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: out.Users, Count: &n, Pagination: &out.Pagination})
}

func (h *AdminUserHandler) get(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID de usuario inválido")
	}
	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "")
}

func (h *AdminUserHandler) update(c echo.Context) error {
	actorID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID de usuario inválido")
	}
	var req adminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Update(c.Request().Context(), actorID, id, usecase.AdminUpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Usuario actualizado exitosamente.")
}

func (h *AdminUserHandler) delete(c echo.Context) error {
	actorID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID de usuario inválido")
	}

	if err := h.uc.Delete(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Usuario eliminado exitosamente.")
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	actorID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID de usuario inválido")
	}

	if err := h.uc.ForceLogout(c.Request().Context(), actorID, id); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Sesiones del usuario invalidadas")
}

// ?action=&resourceType=&limit=&offset=
func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, "Límite no válido")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return badRequest(c, "Offset no válido")
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), usecase.AuditLogListInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resourceType"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

// 未指定は0
func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
