package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// 状態遷移の制約はない（どの状態からどの状態へも変更できる）
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	UserID          int64           `gorm:"not null;index"`
	Total           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null"`
	ShippingAddress string          `gorm:"type:text;not null"`
	Notes           string          `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime;index"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime"`
}

// 管理画面の一覧用（usersとorder_itemsを集計した行）
type OrderSummary struct {
	ID            int64
	UserID        int64
	UserName      string
	UserEmail     string
	Total         decimal.Decimal
	Status        OrderStatus
	PaymentMethod string
	CreatedAt     time.Time
	ItemsCount    int64
}
