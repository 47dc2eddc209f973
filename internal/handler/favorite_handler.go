package handler

import (
	"net/http"

	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/favorites
type FavoriteHandler struct {
	uc *usecase.FavoriteUsecase
}

func NewFavoriteHandler(uc *usecase.FavoriteUsecase) *FavoriteHandler {
	return &FavoriteHandler{uc: uc}
}

type toggleFavoriteRequest struct {
	ProductID int64 `json:"productId"`
}

func (h *FavoriteHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/favorites", guards.User...)

	g.GET("", h.list)
	g.GET("/count", h.count)
	g.GET("/check/:productId", h.check)
	g.POST("/toggle", h.toggle)
	g.DELETE("/:productId", h.remove)
}

func (h *FavoriteHandler) list(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	out, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

func (h *FavoriteHandler) count(c echo.Context) error {
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

func (h *FavoriteHandler) check(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	productID, valid := pathID(c, "productId")
	if !valid {
		return badRequest(c, "Se requiere ID de producto")
	}

	is, err := h.uc.Check(c.Request().Context(), userID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, map[string]bool{"isFavorite": is}, "")
}

func (h *FavoriteHandler) toggle(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	var req toggleFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	is, err := h.uc.Toggle(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	msg := "Eliminado de favoritos"
	if is {
		msg = "Agregado a favoritos"
	}
	return ok(c, http.StatusOK, map[string]bool{"isFavorite": is}, msg)
}

func (h *FavoriteHandler) remove(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	productID, valid := pathID(c, "productId")
	if !valid {
		return badRequest(c, "Se requiere ID de producto")
	}

	if err := h.uc.Remove(c.Request().Context(), userID, productID); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Eliminado de favoritos")
}
