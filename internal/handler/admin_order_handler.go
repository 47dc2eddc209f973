package handler

import (
	"net/http"
	"strconv"
	"time"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	legacy := api.Group("/orders/admin", guards.Admin...)
	legacy.GET("/all", h.list)
	legacy.PUT("/:id/status", h.updateStatus)

	admin := api.Group("/admin/orders", guards.Admin...)
	admin.GET("", h.list)
	admin.PUT("/:id", h.updateStatus)
	admin.PUT("/:id/status", h.updateStatus)
}

// ?page=&limit=&status=&userId=&from=&to=（RFC3339）
func (h *AdminOrderHandler) list(c echo.Context) error {
	in := usecase.AdminOrderListInput{Status: c.QueryParam("status")}

	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "Página no válida")
		}
		in.Page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "Límite no válido")
		}
		in.Limit = l
	}
	if v := c.QueryParam("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "userId no válido")
		}
		in.UserID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "Fecha 'from' no válida")
		}
		in.From = &tm
	}
	if v := c.QueryParam("to"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "Fecha 'to' no válida")
		}
		in.To = &tm
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	n := len(out.Orders)
	return c.JSON(http.StatusOK, SuccessResponse{
		Success:    true,
		Data:       out.Orders,
		Count:      &n,
		Pagination: &out.Pagination,
	})
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID de pedido inválido")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	// ★操作した管理者IDを取得（監査ログ用）
	adminID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Estado del pedido actualizado")
}
