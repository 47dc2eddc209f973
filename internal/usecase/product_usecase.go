package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sushiramen/internal/domain/model"
	"sushiramen/internal/logging"
	repo "sushiramen/internal/repository"

	"github.com/shopspring/decimal"
)

const searchResultSize = 100

// 全文検索エンジン（未設定ならnil）
type ProductSearcher interface {
	Search(ctx context.Context, query string, category string, size int) ([]int64, error)
	Index(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, productID int64) error
}

type ProductUsecase struct {
	products repo.ProductRepository
	tx       repo.TransactionManager
	searcher ProductSearcher
	clock    Clock
}

func NewProductUsecase(products repo.ProductRepository, tx repo.TransactionManager, searcher ProductSearcher, clock Clock) *ProductUsecase {
	return &ProductUsecase{products: products, tx: tx, searcher: searcher, clock: clock}
}

type ProductOutput struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	Stock       int64     `json:"stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Category    string
	ImageURL    string
	Stock       *int64
	IsActive    *bool
}

type UpdateStockInput struct {
	Stock  *int64
	Reason string
}

// 一覧（name順）
// 検索語があってESが使えるならESのヒットで絞る。ESが落ちていたらDBのLIKEで探す。
func (u *ProductUsecase) List(ctx context.Context, category string, search string) ([]ProductOutput, error) {
	q := repo.ProductListQuery{
		Category: strings.TrimSpace(category),
		Search:   strings.TrimSpace(search),
	}

	if q.Search != "" && u.searcher != nil {
		ids, err := u.searcher.Search(ctx, q.Search, q.Category, searchResultSize)
		if err != nil {
			logging.FromContext(ctx).Warn("product search failed, falling back to database",
				"query", q.Search, "error", err)
		} else {
			q.IDs = ids
			q.Search = ""
		}
	}

	products, err := u.products.List(ctx, q)
	if err != nil {
		return nil, internalError(err)
	}

	out := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		out = append(out, toProductOutput(p))
	}
	return out, nil
}

// 公開中の商品だけ返す
func (u *ProductUsecase) Get(ctx context.Context, id int64) (ProductOutput, error) {
	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return ProductOutput{}, productNotFound()
	}
	if err != nil {
		return ProductOutput{}, internalError(err)
	}
	return toProductOutput(p), nil
}

func (u *ProductUsecase) AdminCreate(ctx context.Context, in ProductInput) (ProductOutput, error) {
	if err := validateProductInput(in); err != nil {
		return ProductOutput{}, err
	}

	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsActive:    true,
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return ProductOutput{}, invalidProduct()
		}
		p.Stock = *in.Stock
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, internalError(err)
	}
	u.reindex(ctx, created)
	return toProductOutput(created), nil
}

// 在庫は別API（UpdateStock）で変更する
func (u *ProductUsecase) AdminUpdate(ctx context.Context, id int64, in ProductInput) (ProductOutput, error) {
	if err := validateProductInput(in); err != nil {
		return ProductOutput{}, err
	}

	p, err := u.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, productNotFound()
	}
	if err != nil {
		return ProductOutput{}, internalError(err)
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.Category = strings.TrimSpace(in.Category)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := u.products.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ProductOutput{}, productNotFound()
		}
		return ProductOutput{}, internalError(err)
	}

	updated, err := u.products.FindByID(ctx, id)
	if err != nil {
		return ProductOutput{}, internalError(err)
	}
	u.reindex(ctx, updated)
	return toProductOutput(updated), nil
}

// 論理削除（注文明細からは引き続き参照できる）
func (u *ProductUsecase) AdminDelete(ctx context.Context, id int64) error {
	if err := u.products.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFound()
		}
		return internalError(err)
	}

	if u.searcher != nil {
		if err := u.searcher.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("product index delete failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// 在庫の直接変更（調整履歴＋監査ログを同じTxで残す）
func (u *ProductUsecase) AdminUpdateStock(ctx context.Context, actorAdminUserID int64, id int64, in UpdateStockInput) (ProductOutput, error) {
	if in.Stock == nil || *in.Stock < 0 {
		return ProductOutput{}, NewCodedError(http.StatusBadRequest, CodeValidation, "Se requiere un stock válido")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "manual update"
	}

	var updated model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFound()
		}
		if err != nil {
			return internalError(err)
		}

		if err := r.Inventory().SetStock(ctx, id, *in.Stock); err != nil {
			return internalError(err)
		}
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ProductID:   id,
			ActorUserID: actorAdminUserID,
			Kind:        model.AdjustmentManual,
			Delta:       *in.Stock - p.Stock,
			Reason:      reason,
		}); err != nil {
			return internalError(err)
		}

		beforeJSON, _ := json.Marshal(map[string]int64{"stock": p.Stock})
		afterJSON, _ := json.Marshal(map[string]int64{"stock": *in.Stock})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   id,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return internalError(err)
		}

		p.Stock = *in.Stock
		updated = p
		return nil
	})
	if err != nil {
		return ProductOutput{}, toHTTPError(err)
	}
	return toProductOutput(updated), nil
}

func (u *ProductUsecase) reindex(ctx context.Context, p model.Product) {
	if u.searcher == nil {
		return
	}
	if err := u.searcher.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("product index failed", "product_id", p.ID, "error", err)
	}
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" || in.Price == nil || in.Price.IsNegative() {
		return invalidProduct()
	}
	return nil
}

func invalidProduct() *HTTPError {
	return NewCodedError(http.StatusBadRequest, CodeValidation, "Por favor, proporciona todos los campos requeridos para el producto.")
}

func productNotFound() *HTTPError {
	return NewCodedError(http.StatusNotFound, CodeNotFound, "Producto no encontrado")
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
