package model

import "time"

type Favorite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_favorites_user_product"`
	ProductID int64     `gorm:"not null;uniqueIndex:ux_favorites_user_product;index"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}
