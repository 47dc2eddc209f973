package model

import "time"

// 在庫更新、注文ステータス更新など。
type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdateUser        AuditAction = "UPDATE_USER"
	AuditActionDeleteUser        AuditAction = "DELETE_USER"
	AuditActionForceLogout       AuditAction = "FORCE_LOGOUT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement"`
	ActorUserID  int64             `gorm:"not null;index"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index"`
	ResourceID   int64             `gorm:"not null;index"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text"`
	AfterJSON  string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index"`
}
