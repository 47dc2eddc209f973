package repository

import (
	"context"

	"sushiramen/internal/domain/model"
)

// 保存・取得を約束
// 見つからないときはErrNotFoundを返す。
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, userIDs []int64) ([]model.User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, userID int64) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
