package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"sushiramen/internal/domain/model"
	repo "sushiramen/internal/repository"
)

type ReviewUsecase struct {
	reviews  repo.ReviewRepository
	products repo.ProductRepository
	users    repo.UserRepository
}

func NewReviewUsecase(reviews repo.ReviewRepository, products repo.ProductRepository, users repo.UserRepository) *ReviewUsecase {
	return &ReviewUsecase{reviews: reviews, products: products, users: users}
}

type ReviewOutput struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	ProductID int64     `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ReviewInput struct {
	ProductID int64
	Rating    int
	Comment   string
}

// 商品のレビュー（新しい順、投稿者名つき）
func (u *ReviewUsecase) ListByProduct(ctx context.Context, productID int64) ([]ReviewOutput, error) {
	reviews, err := u.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return nil, internalError(err)
	}

	userIDs := make([]int64, 0, len(reviews))
	for _, rv := range reviews {
		userIDs = append(userIDs, rv.UserID)
	}
	users, err := u.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, internalError(err)
	}
	names := make(map[int64]string, len(users))
	for _, us := range users {
		names[us.ID] = us.Name
	}

	out := make([]ReviewOutput, 0, len(reviews))
	for _, rv := range reviews {
		o := toReviewOutput(rv)
		o.UserName = names[rv.UserID]
		out = append(out, o)
	}
	return out, nil
}

// 自分のレビュー（なければnil）
func (u *ReviewUsecase) FindMine(ctx context.Context, userID int64, productID int64) (*ReviewOutput, error) {
	rv, err := u.reviews.FindByUserAndProduct(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError(err)
	}
	o := toReviewOutput(rv)
	return &o, nil
}

func (u *ReviewUsecase) Create(ctx context.Context, userID int64, in ReviewInput) (ReviewOutput, error) {
	if in.ProductID <= 0 || in.Rating == 0 {
		return ReviewOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "productId y rating son requeridos")
	}
	if err := validateRating(in.Rating); err != nil {
		return ReviewOutput{}, err
	}

	if _, err := u.products.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ReviewOutput{}, productNotFound()
		}
		return ReviewOutput{}, internalError(err)
	}

	// 事前チェック。同時投稿はユニーク制約で弾く
	_, err := u.reviews.FindByUserAndProduct(ctx, userID, in.ProductID)
	if err == nil {
		return ReviewOutput{}, reviewExists()
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return ReviewOutput{}, internalError(err)
	}

	rv := model.Review{
		UserID:    userID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := u.reviews.Create(ctx, &rv); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ReviewOutput{}, reviewExists()
		}
		return ReviewOutput{}, internalError(err)
	}
	return toReviewOutput(rv), nil
}

// 本人のレビューだけ更新できる
func (u *ReviewUsecase) Update(ctx context.Context, userID int64, reviewID int64, rating int, comment string) (ReviewOutput, error) {
	if err := validateRating(rating); err != nil {
		return ReviewOutput{}, err
	}

	rv, err := u.reviews.FindByID(ctx, reviewID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && rv.UserID != userID) {
		return ReviewOutput{}, reviewNotFound()
	}
	if err != nil {
		return ReviewOutput{}, internalError(err)
	}

	rv.Rating = rating
	rv.Comment = strings.TrimSpace(comment)
	if err := u.reviews.Update(ctx, rv); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ReviewOutput{}, reviewNotFound()
		}
		return ReviewOutput{}, internalError(err)
	}

	updated, err := u.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return ReviewOutput{}, internalError(err)
	}
	return toReviewOutput(updated), nil
}

// 本人か管理者
func (u *ReviewUsecase) Delete(ctx context.Context, userID int64, role model.Role, reviewID int64) error {
	rv, err := u.reviews.FindByID(ctx, reviewID)
	if errors.Is(err, repo.ErrNotFound) {
		return reviewNotFound()
	}
	if err != nil {
		return internalError(err)
	}
	if rv.UserID != userID && role != model.RoleAdmin {
		return NewCodedError(http.StatusForbidden, CodeForbidden, "No autorizado para eliminar esta reseña")
	}

	if err := u.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return reviewNotFound()
		}
		return internalError(err)
	}
	return nil
}

func validateRating(rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return NewCodedError(http.StatusBadRequest, CodeInvalidRating, "El rating debe estar entre 1 y 5")
	}
	return nil
}

func reviewExists() *HTTPError {
	return NewCodedError(http.StatusBadRequest, CodeReviewExists, "Ya has creado una reseña para este producto")
}

func reviewNotFound() *HTTPError {
	return NewCodedError(http.StatusNotFound, CodeNotFound, "Reseña no encontrada")
}

func toReviewOutput(rv model.Review) ReviewOutput {
	return ReviewOutput{
		ID:        rv.ID,
		UserID:    rv.UserID,
		ProductID: rv.ProductID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}
