package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付记录
type Payment struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                 // 主键
	OrderID       uint           `gorm:"index;not null" json:"order_id"`                       // 订单ID
	UserID        *uint          `gorm:"index" json:"user_id,omitempty"`                       // 用户ID
	PaymentMethod string         `gorm:"type:varchar(50);not null" json:"payment_method"`      // 支付方式
	TransactionID string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_id"` // 第三方流水号
	Status        string         `gorm:"type:varchar(20);index;not null" json:"status"`        // 支付状态（Pending/Completed/Failed）
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`  // 支付金额
	CustomerRef   string         `gorm:"type:varchar(100)" json:"customer_ref,omitempty"`      // 客户参考号
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	PaidAt        *time.Time     `gorm:"index" json:"paid_at,omitempty"`                       // 支付完成时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
