package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo           string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号
	UserID            *uint          `gorm:"index" json:"user_id,omitempty"`                            // 用户ID（游客订单为空）
	Status            string         `gorm:"type:varchar(20);index;not null" json:"status"`             // 订单状态（Pending/Processing/Shipped/Delivered/Cancelled）
	TotalPrice        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`  // 订单总额
	ReferredByAgentID *uint          `gorm:"index" json:"referred_by_agent_id,omitempty"`               // 推荐代理ID
	AgentCodeUsed     string         `gorm:"type:varchar(32);index" json:"agent_code_used,omitempty"`   // 使用的代理推广码
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items      []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`      // 订单项
	Payments   []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`   // 支付记录
	Financials []Financial `gorm:"foreignKey:OrderID" json:"financials,omitempty"` // 财务流水
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
