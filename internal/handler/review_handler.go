package handler

import (
	"net/http"
	"strconv"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/reviews（一覧だけ公開）
type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

type createReviewRequest struct {
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/reviews")

	g.GET("/:productId", h.listByProduct)

	g.GET("/user/:productId", h.mine, guards.User...)
	g.POST("", h.create, guards.User...)
	g.PUT("/:reviewId", h.update, guards.User...)
	g.DELETE("/:reviewId", h.delete, guards.User...)
}

func (h *ReviewHandler) listByProduct(c echo.Context) error {
	productID, valid := pathID(c, "productId")
	if !valid {
		return badRequest(c, "Se requiere ID de producto")
	}
	out, err := h.uc.ListByProduct(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return okList(c, out)
}

// /user/:productId と旧形式 /user/:userId?productId= の両方を受ける
func (h *ReviewHandler) mine(c echo.Context) error {
	userID, role, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}

	targetID := userID
	productID, valid := pathID(c, "productId")
	if q := c.QueryParam("productId"); q != "" {
		// 旧形式ではパスがuserId
		pid, err := strconv.ParseInt(q, 10, 64)
		if err != nil || pid <= 0 {
			return badRequest(c, "Se requiere un productId válido")
		}
		if !valid {
			return badRequest(c, "Se requiere ID de usuario")
		}
		if productID != userID && role != model.RoleAdmin {
			return writeError(c, usecase.NewCodedError(http.StatusForbidden, usecase.CodeForbidden, "No autorizado"))
		}
		targetID, productID = productID, pid
	} else if !valid {
		return badRequest(c, "Se requiere ID de producto")
	}

	rv, err := h.uc.FindMine(c.Request().Context(), targetID, productID)
	if err != nil {
		return writeError(c, err)
	}
	if rv == nil {
		return ok(c, http.StatusOK, nil, "No se encontró reseña para este producto")
	}
	return ok(c, http.StatusOK, rv, "")
}

func (h *ReviewHandler) create(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Create(c.Request().Context(), userID, usecase.ReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusCreated, out, "Reseña creada exitosamente")
}

func (h *ReviewHandler) update(c echo.Context) error {
	userID, _, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	reviewID, valid := pathID(c, "reviewId")
	if !valid {
		return badRequest(c, "ID inválido")
	}
	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	out, err := h.uc.Update(c.Request().Context(), userID, reviewID, req.Rating, req.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, out, "Reseña actualizada exitosamente")
}

func (h *ReviewHandler) delete(c echo.Context) error {
	userID, role, authed := currentUser(c)
	if !authed {
		return unauthorized(c)
	}
	reviewID, valid := pathID(c, "reviewId")
	if !valid {
		return badRequest(c, "ID inválido")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, role, reviewID); err != nil {
		return writeError(c, err)
	}
	return ok(c, http.StatusOK, nil, "Reseña eliminada exitosamente")
}
