package middleware

import (
	"errors"
	"net/http"

	"sushiramen/internal/logging"
	"sushiramen/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionの一致するか確認。
// roleはトークンではなくDBの値を信じる。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_idとtvを取得する
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return deny(c, http.StatusUnauthorized, CodeInvalidToken, "Token inválido")
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok {
				return deny(c, http.StatusUnauthorized, CodeInvalidToken, "Token inválido")
			}

			ctx := c.Request().Context()
			user, err := userRepo.FindByID(ctx, userID)
			if errors.Is(err, repository.ErrNotFound) {
				return deny(c, http.StatusUnauthorized, CodeUserNotFound, "Usuario no encontrado")
			}
			if err != nil {
				logging.FromContext(ctx).Error("load user for token check failed", "user_id", userID, "error", err)
				return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Error interno del servidor", Code: "INTERNAL_ERROR"})
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if user.TokenVersion != tv {
				return deny(c, http.StatusUnauthorized, CodeInvalidToken, "Token inválido")
			}

			c.Set(CtxUserRoleKey, user.Role)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx,
				logging.FromContext(ctx).With("user_id", userID))))

			return next(c)
		}
	}
}
