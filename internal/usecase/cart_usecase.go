package usecase

import (
	"context"
	"errors"
	"net/http"

	"sushiramen/internal/domain/model"
	repo "sushiramen/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック
// カートはユーザー×商品の行だけで持つ（カート自体のテーブルはない）
type CartUsecase struct {
	carts    repo.CartRepository
	products repo.ProductRepository
}

func NewCartUsecase(carts repo.CartRepository, products repo.ProductRepository) *CartUsecase {
	return &CartUsecase{carts: carts, products: products}
}

type CartItemOutput struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int64   `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Stock     int64   `json:"stock"`
}

type CartOutput struct {
	Items []CartItemOutput `json:"items"`
	Total float64          `json:"total"`
	Count int64            `json:"count"`
}

// 価格は現在の商品価格（注文時に確定する）
func (u *CartUsecase) Get(ctx context.Context, userID int64) (CartOutput, error) {
	lines, err := u.carts.ListByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, internalError(err)
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := u.products.FindByIDs(ctx, ids, true)
	if err != nil {
		return CartOutput{}, internalError(err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := CartOutput{Items: make([]CartItemOutput, 0, len(lines))}
	total := decimal.Zero
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		sub := p.Price.Mul(decimal.NewFromInt(l.Quantity))
		total = total.Add(sub)
		out.Count += l.Quantity
		out.Items = append(out.Items, CartItemOutput{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price.InexactFloat64(),
			ImageURL:  p.ImageURL,
			Quantity:  l.Quantity,
			Subtotal:  sub.InexactFloat64(),
			Stock:     p.Stock,
		})
	}
	out.Total = total.InexactFloat64()
	return out, nil
}

func (u *CartUsecase) Count(ctx context.Context, userID int64) (int64, error) {
	n, err := u.carts.CountItems(ctx, userID)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

// Add はカートに追加（同一商品は数量加算）
// quantityがnilなら1
func (u *CartUsecase) Add(ctx context.Context, userID int64, productID int64, quantity *int64) (CartOutput, error) {
	if productID <= 0 {
		return CartOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Se requiere ID de producto")
	}
	qty := int64(1)
	if quantity != nil {
		qty = *quantity
	}
	if qty < 1 {
		return CartOutput{}, invalidQuantity()
	}

	p, err := u.activeProduct(ctx, productID)
	if err != nil {
		return CartOutput{}, err
	}

	var current int64
	line, err := u.carts.FindLine(ctx, userID, productID)
	switch {
	case err == nil:
		current = line.Quantity
	case !errors.Is(err, repo.ErrNotFound):
		return CartOutput{}, internalError(err)
	}
	if current+qty > p.Stock {
		return CartOutput{}, NewCodedError(http.StatusConflict, CodeInsufficientStock, "Stock insuficiente para "+p.Name)
	}

	if _, err := u.carts.AddQuantity(ctx, userID, productID, qty); err != nil {
		return CartOutput{}, internalError(err)
	}
	return u.Get(ctx, userID)
}

// Update は数量を上書き。0以下なら行を消す（removed=true）
func (u *CartUsecase) Update(ctx context.Context, userID int64, productID int64, quantity int64) (CartOutput, bool, error) {
	if quantity <= 0 {
		out, err := u.Remove(ctx, userID, productID)
		return out, true, err
	}

	p, err := u.activeProduct(ctx, productID)
	if err != nil {
		return CartOutput{}, false, err
	}
	if quantity > p.Stock {
		return CartOutput{}, false, NewCodedError(http.StatusConflict, CodeInsufficientStock, "Stock insuficiente para "+p.Name)
	}

	if err := u.carts.SetQuantity(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, false, cartItemNotFound()
		}
		return CartOutput{}, false, internalError(err)
	}
	out, err := u.Get(ctx, userID)
	return out, false, err
}

func (u *CartUsecase) Remove(ctx context.Context, userID int64, productID int64) (CartOutput, error) {
	if err := u.carts.DeleteLine(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartOutput{}, cartItemNotFound()
		}
		return CartOutput{}, internalError(err)
	}
	return u.Get(ctx, userID)
}

func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if err := u.carts.Clear(ctx, userID); err != nil {
		return internalError(err)
	}
	return nil
}

func (u *CartUsecase) activeProduct(ctx context.Context, productID int64) (model.Product, error) {
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return model.Product{}, productNotFound()
	}
	if err != nil {
		return model.Product{}, internalError(err)
	}
	return p, nil
}

func invalidQuantity() *HTTPError {
	return NewCodedError(http.StatusBadRequest, CodeValidation, "Se requiere cantidad válida")
}

func cartItemNotFound() *HTTPError {
	return NewCodedError(http.StatusNotFound, CodeNotFound, "Ítem no encontrado en el carrito")
}
