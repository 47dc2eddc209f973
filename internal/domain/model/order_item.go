package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の商品名・画像・単価を保存する（後から商品を編集・削除しても変わらない）
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"not null;index"`
	ProductID   int64           `gorm:"not null;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	ImageURL    string          `gorm:"type:varchar(500)"`
	Quantity    int64           `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
