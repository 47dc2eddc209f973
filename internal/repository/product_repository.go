package repository

import (
	"context"

	"sushiramen/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Category string
	Search   string  // name/descriptionの部分一致
	IDs      []int64 // 検索エンジンのヒットで絞る
	// falseならis_active=trueだけ
	IncludeInactive bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// name順
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// includeDeletedなら論理削除済みも返す（カート・注文の表示用）
	FindByIDs(ctx context.Context, ids []int64, includeDeleted bool) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
