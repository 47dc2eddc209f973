package repository

import (
	"context"

	"sushiramen/internal/domain/model"
)

type CartRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)
	// 注文確定用。ユーザーのカート行をロックして返す（同時チェックアウトを直列化）
	LockByUserID(ctx context.Context, userID int64) ([]model.CartLine, error)
	FindLine(ctx context.Context, userID int64, productID int64) (model.CartLine, error)
	// 同一商品は数量を加算
	AddQuantity(ctx context.Context, userID int64, productID int64, qty int64) (model.CartLine, error)
	SetQuantity(ctx context.Context, userID int64, productID int64, qty int64) error
	DeleteLine(ctx context.Context, userID int64, productID int64) error
	Clear(ctx context.Context, userID int64) error
	// 指定した行だけ削除（注文確定でロックした行）
	DeleteLines(ctx context.Context, userID int64, lineIDs []int64) error
	// 数量の合計
	CountItems(ctx context.Context, userID int64) (int64, error)
}
