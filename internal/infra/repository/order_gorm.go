package repository

import (
	"context"
	"fmt"

	"sushiramen/internal/domain/model"
	repo "sushiramen/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return r.find(ctx, r.db, orderID)
}

func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.find(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), orderID)
}

func (r *OrderGormRepository) find(ctx context.Context, db *gorm.DB, orderID int64) (model.Order, error) {
	var o model.Order
	err := db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if isNotFound(err) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("find order: %w", err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if res.Error != nil {
		return fmt.Errorf("update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type orderItemCount struct {
	OrderID    int64
	ItemsCount int64
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.OrderSummary, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	// Countと一覧で条件を共有する
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var orders []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Session(&gorm.Session{}).Order("created_at desc").Order("id desc").Limit(f.Limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return []model.OrderSummary{}, total, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	userIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		userIDs = append(userIDs, o.UserID)
	}

	// 明細数
	var counts []orderItemCount
	err := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Select("order_id, COUNT(*) AS items_count").
		Where("order_id IN ?", orderIDs).
		Group("order_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("count order items: %w", err)
	}
	countByOrder := make(map[int64]int64, len(counts))
	for _, c := range counts {
		countByOrder[c.OrderID] = c.ItemsCount
	}

	// 注文者（削除済みユーザーは空欄）
	var users []model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("find order users: %w", err)
	}
	userByID := make(map[int64]model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	out := make([]model.OrderSummary, 0, len(orders))
	for _, o := range orders {
		u := userByID[o.UserID]
		out = append(out, model.OrderSummary{
			ID:            o.ID,
			UserID:        o.UserID,
			UserName:      u.Name,
			UserEmail:     u.Email,
			Total:         o.Total,
			Status:        o.Status,
			PaymentMethod: o.PaymentMethod,
			CreatedAt:     o.CreatedAt,
			ItemsCount:    countByOrder[o.ID],
		})
	}
	return out, total, nil
}
