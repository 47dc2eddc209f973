package middleware

import (
	"net/http"

	"sushiramen/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがadminかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(model.Role)
			if !ok || role == "" {
				return deny(c, http.StatusUnauthorized, CodeInvalidToken, "Token inválido")
			}

			//userは拒否、adminだけ許可
			if role != model.RoleAdmin {
				return deny(c, http.StatusForbidden, CodeAdminRequired, "Acceso restringido: se requieren privilegios de administrador")
			}

			return next(c)
		}
	}
}
