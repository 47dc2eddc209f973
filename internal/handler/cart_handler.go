package handler

import (
	"math"
	"net/http"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// 小数や文字列を弾くためにfloatで受ける
type AddCartRequest struct {
	ProductID int64    `json:"productId"`
	Quantity  *float64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *float64 `json:"quantity"`
}

const msgInvalidQuantity = "Se requiere cantidad válida"

func (h *CartHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/cart", guards.User...)

	g.GET("", h.getCart)
	g.GET("/count", h.count)
	g.POST("", h.addToCart)
	g.PUT("/:productId", h.updateItem)
	g.DELETE("/:productId", h.deleteItem)
	g.DELETE("", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	out, err := h.uc.Get(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "")
}

// 数量の合計
func (h *CartHandler) count(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	n, err := h.uc.Count(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, map[string]int64{"count": n}, "")
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	var qty *int64
	if req.Quantity != nil {
		n, valid := wholeNumber(*req.Quantity)
		if !valid {
			return badRequest(c, msgInvalidQuantity)
		}
		qty = &n
	}

	out, err := h.uc.Add(c.Request().Context(), userID, req.ProductID, qty)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusCreated, out, "Producto agregado al carrito")
}

// 0以下なら行を消す
func (h *CartHandler) updateItem(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	productID, valid := pathID(c, "productId")
	if !valid {
		return badRequest(c, "Se requiere ID de producto")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return badRequest(c, msgInvalidQuantity)
	}
	qty, valid := wholeNumber(*req.Quantity)
	if !valid {
		return badRequest(c, msgInvalidQuantity)
	}

	out, removed, err := h.uc.Update(c.Request().Context(), userID, productID, qty)
	if err != nil {
		return writeError(c, err)
	}
	if removed {
		return ok(c, http.StatusOK, out, "Ítem eliminado del carrito")
	}
	return ok(c, http.StatusOK, out, "Carrito actualizado")
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	productID, valid := pathID(c, "productId")
	if !valid {
		return badRequest(c, "Se requiere ID de producto")
	}

	out, err := h.uc.Remove(c.Request().Context(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Ítem eliminado del carrito")
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Carrito vaciado exitosamente")
}

func wholeNumber(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1e9 {
		return 0, false
	}
	return int64(f), true
}
