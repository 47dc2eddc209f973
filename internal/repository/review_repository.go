package repository

import (
	"context"

	"sushiramen/internal/domain/model"
)

type ReviewRepository interface {
	// 新しい順
	ListByProductID(ctx context.Context, productID int64) ([]model.Review, error)
	FindByID(ctx context.Context, reviewID int64) (model.Review, error)
	FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.Review, error)
	// 同じユーザー×商品はErrDuplicate
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review model.Review) error
	Delete(ctx context.Context, reviewID int64) error
}
