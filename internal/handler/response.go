package handler

import (
	"net/http"
	"strconv"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/logging"
	"sushiramen/internal/middleware"
	"sushiramen/internal/repository"
	"sushiramen/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 成功時の共通レスポンス
type SuccessResponse struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data"`
	Message    string              `json:"message,omitempty"`
	Count      *int                `json:"count,omitempty"`
	Pagination *usecase.Pagination `json:"pagination,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func ok(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, SuccessResponse{Success: true, Data: data, Message: message})
}

func okList[T any](c echo.Context, items []T) error {
	n := len(items)
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: items, Count: &n})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: he.Code})
	}

	//500
	logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Error interno del servidor", Code: usecase.CodeInternal})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: usecase.CodeValidation})
}

func invalidBody(c echo.Context) error {
	return badRequest(c, "Cuerpo de la solicitud inválido")
}

func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// AuthJWT+TokenVersionGuardが入れた値
func currentUser(c echo.Context) (int64, model.Role, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, "", false
	}
	role, _ := c.Get(middleware.CtxUserRoleKey).(model.Role)
	return id, role, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Token inválido", Code: middleware.CodeInvalidToken})
}

// ルートごとの認証ミドルウェアの組
type Guards struct {
	User  []echo.MiddlewareFunc
	Admin []echo.MiddlewareFunc
}

func NewGuards(jwtSecret string, users repository.UserRepository) Guards {
	user := []echo.MiddlewareFunc{
		middleware.AuthJWT(jwtSecret),
		middleware.TokenVersionGuard(users),
	}
	admin := append(append([]echo.MiddlewareFunc{}, user...), middleware.AdminRoleGuard())
	return Guards{User: user, Admin: admin}
}
