package model

import "time"

// カートの1行（ユーザー×商品で1行）
// quantityは常に1以上。0以下にする操作は行の削除になる。
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_cart_lines_user_product"`
	ProductID int64     `gorm:"not null;uniqueIndex:ux_cart_lines_user_product;index"`
	Quantity  int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
