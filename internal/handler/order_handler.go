package handler

import (
	"net/http"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type CheckoutRequest struct {
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress"`
	Notes           string `json:"notes"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/orders", guards.User...)

	g.POST("/checkout", h.checkout)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusCreated, out, "Pedido creado exitosamente")
}

// 自分の注文（新しい順）
func (h *OrderHandler) list(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

// 本人か管理者
func (h *OrderHandler) detail(c echo.Context) error {
	userID, role, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID de pedido inválido")
	}

	out, err := h.uc.GetOrder(c.Request().Context(), userID, role, id)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "")
}
