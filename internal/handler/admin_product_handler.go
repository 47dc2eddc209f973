package handler

import (
	"net/http"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 商品の作成・更新（priceは数値でも文字列でも受ける）
type ProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	ImageURL    string           `json:"image_url"`
	Stock       *int64           `json:"stock"`
	IsActive    *bool            `json:"is_active"`
}

// 在庫更新の入力です。
type StockUpdateRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// /api/products と /api/admin/products の両方に同じ管理APIを生やす
func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	for _, prefix := range []string{"/products", "/admin/products"} {
		g := api.Group(prefix, guards.Admin...)
		g.POST("", h.createProduct)
		g.PUT("/:id", h.updateProduct)
		g.DELETE("/:id", h.deleteProduct)
		g.PUT("/:id/stock", h.updateStock)
	}
}

func (r ProductRequest) toInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
	}
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.AdminCreate(c.Request().Context(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusCreated, out, "Producto creado exitosamente")
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID inválido")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.AdminUpdate(c.Request().Context(), id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Producto actualizado exitosamente")
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID inválido")
	}

	if err := h.uc.AdminDelete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Producto eliminado exitosamente")
}

func (h *AdminProductHandler) updateStock(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "ID inválido")
	}

	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	// ★操作した管理者IDを取得（監査ログ用）
	adminID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	out, err := h.uc.AdminUpdateStock(c.Request().Context(), adminID, id, usecase.UpdateStockInput{
		Stock:  req.Stock,
		Reason: req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Stock actualizado exitosamente")
}
