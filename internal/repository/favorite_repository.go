package repository

import (
	"context"

	"sushiramen/internal/domain/model"
)

type FavoriteRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.Favorite, error)
	Exists(ctx context.Context, userID int64, productID int64) (bool, error)
	// すでにあれば何もしない
	Add(ctx context.Context, userID int64, productID int64) error
	// なければErrNotFound
	Remove(ctx context.Context, userID int64, productID int64) error
	Count(ctx context.Context, userID int64) (int64, error)
}
