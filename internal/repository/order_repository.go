package repository

import (
	"context"
	"time"

	"sushiramen/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// ステータス変更用（行ロック）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	// 新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//管理者用の注文一覧（ユーザー名・明細数つき）
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.OrderSummary, int64, error)
}
