package server

import (
	"sushiramen/internal/config"
	"sushiramen/internal/handler"
	infrarepo "sushiramen/internal/infra/repository"
	"sushiramen/internal/usecase"
	auth "sushiramen/internal/usecase/auth_usecase"
	"sushiramen/internal/validator"

	"gorm.io/gorm"
)

// 外から差し替えるもの（Searcherは未設定ならnilのまま渡す）
type Deps struct {
	DB         *gorm.DB
	Notifier   usecase.Notifier
	Searcher   usecase.ProductSearcher
	Clock      usecase.Clock
	BcryptCost int
}

// NewHandlers はRepository→Usecase→Handlerを組み立てる
func NewHandlers(cfg config.Config, d Deps) Handlers {
	clock := d.Clock
	if clock == nil {
		clock = auth.SystemClock{}
	}

	//Repository（GORM実装）
	users := infrarepo.NewUserGormRepository(d.DB)
	products := infrarepo.NewProductGormRepository(d.DB)
	carts := infrarepo.NewCartGormRepository(d.DB)
	favorites := infrarepo.NewFavoriteGormRepository(d.DB)
	reviews := infrarepo.NewReviewGormRepository(d.DB)
	orders := infrarepo.NewOrderGormRepository(d.DB)
	orderItems := infrarepo.NewOrderItemGormRepository(d.DB)
	auditLogs := infrarepo.NewAuditLogGormRepository(d.DB)
	tx := infrarepo.NewTxManagerGorm(d.DB)

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(d.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL)
	v := validator.NewAuthValidator(users)

	productUC := usecase.NewProductUsecase(products, tx, d.Searcher, clock)

	return Handlers{
		Guards:       handler.NewGuards(cfg.JWTSecret, users),
		Auth:         handler.NewAuthHandler(usecase.NewAuthUsecase(users, v, hasher, verifier, issuer, d.Notifier, clock, cfg.PasswordResetTTL)),
		User:         handler.NewUserHandler(usecase.NewUserUsecase(users, v, hasher, verifier)),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(usecase.NewCartUsecase(carts, products)),
		Favorite:     handler.NewFavoriteHandler(usecase.NewFavoriteUsecase(favorites, products)),
		Review:       handler.NewReviewHandler(usecase.NewReviewUsecase(reviews, products, users)),
		Order:        handler.NewOrderHandler(usecase.NewOrderUsecase(tx, orders, orderItems, users, d.Notifier)),
		AdminOrder:   handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(tx, users, d.Notifier, clock)),
		AdminUser:    handler.NewAdminUserHandler(usecase.NewAdminUserUsecase(tx, users, auditLogs, clock)),
	}
}
