package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// 1ユーザー1商品につき1件まで
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_reviews_user_product"`
	ProductID int64     `gorm:"not null;uniqueIndex:ux_reviews_user_product;index"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
