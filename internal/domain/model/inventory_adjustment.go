package model

import "time"

type AdjustmentKind string

const (
	AdjustmentManual  AdjustmentKind = "manual"  // 管理者が在庫数を直接変更
	AdjustmentReserve AdjustmentKind = "reserve" // 注文で確保
	AdjustmentRestock AdjustmentKind = "restock" // キャンセルで戻し
)

// 在庫増減の履歴
type InventoryAdjustment struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	ProductID   int64          `gorm:"not null;index"`
	ActorUserID int64          `gorm:"not null;index"`
	OrderID     *int64         `gorm:"index"`
	Kind        AdjustmentKind `gorm:"type:varchar(20);not null"`
	Delta       int64          `gorm:"not null"`
	Reason      string         `gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime"`
}
