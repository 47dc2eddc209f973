package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sushiramen/internal/domain/model"
	repo "sushiramen/internal/repository"
)

type FavoriteUsecase struct {
	favorites repo.FavoriteRepository
	products  repo.ProductRepository
}

func NewFavoriteUsecase(favorites repo.FavoriteRepository, products repo.ProductRepository) *FavoriteUsecase {
	return &FavoriteUsecase{favorites: favorites, products: products}
}

type FavoriteOutput struct {
	ProductOutput
	FavoritedAt time.Time `json:"favorited_at"`
}

// お気に入り一覧（商品情報つき、新しい順）
// 削除済みの商品は出さない
func (u *FavoriteUsecase) List(ctx context.Context, userID int64) ([]FavoriteOutput, error) {
	favs, err := u.favorites.ListByUserID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}

	ids := make([]int64, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids, false)
	if err != nil {
		return nil, internalError(err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]FavoriteOutput, 0, len(favs))
	for _, f := range favs {
		p, ok := byID[f.ProductID]
		if !ok {
			continue
		}
		out = append(out, FavoriteOutput{ProductOutput: toProductOutput(p), FavoritedAt: f.CreatedAt})
	}
	return out, nil
}

func (u *FavoriteUsecase) Count(ctx context.Context, userID int64) (int64, error) {
	n, err := u.favorites.Count(ctx, userID)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

func (u *FavoriteUsecase) Check(ctx context.Context, userID int64, productID int64) (bool, error) {
	ok, err := u.favorites.Exists(ctx, userID, productID)
	if err != nil {
		return false, internalError(err)
	}
	return ok, nil
}

// Toggle はあれば外し、なければ追加する。戻り値は操作後の状態
func (u *FavoriteUsecase) Toggle(ctx context.Context, userID int64, productID int64) (bool, error) {
	if productID <= 0 {
		return false, NewCodedError(http.StatusBadRequest, CodeValidation, "Se requiere ID de producto")
	}

	exists, err := u.favorites.Exists(ctx, userID, productID)
	if err != nil {
		return false, internalError(err)
	}
	if exists {
		if err := u.favorites.Remove(ctx, userID, productID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return false, internalError(err)
		}
		return false, nil
	}

	if _, err := u.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, productNotFound()
		}
		return false, internalError(err)
	}
	if err := u.favorites.Add(ctx, userID, productID); err != nil {
		return false, internalError(err)
	}
	return true, nil
}

func (u *FavoriteUsecase) Remove(ctx context.Context, userID int64, productID int64) error {
	if err := u.favorites.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewCodedError(http.StatusNotFound, CodeNotFound, "Favorito no encontrado")
		}
		return internalError(err)
	}
	return nil
}
