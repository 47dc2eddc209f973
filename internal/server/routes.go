package server

import (
	"net/http"

	"sushiramen/internal/handler"

	"github.com/labstack/echo/v4"
)

// ルート登録に必要なもの一式
type Handlers struct {
	Guards       handler.Guards
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Favorite     *handler.FavoriteHandler
	Review       *handler.ReviewHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"success": true, "status": "ok"})
	})

	h.Auth.RegisterRoutes(api, h.Guards)
	h.User.RegisterRoutes(api, h.Guards)
	h.Product.RegisterRoutes(api)
	h.AdminProduct.RegisterRoutes(api, h.Guards)
	h.Cart.RegisterRoutes(api, h.Guards)
	h.Favorite.RegisterRoutes(api, h.Guards)
	h.Review.RegisterRoutes(api, h.Guards)
	h.Order.RegisterRoutes(api, h.Guards)
	h.AdminOrder.RegisterRoutes(api, h.Guards)
	h.AdminUser.RegisterRoutes(api, h.Guards)
}
