package models

import (
	"time"

	"gorm.io/gorm"
)

// AgentSale 代理销售记录
//
// CommissionRate 是归因时从代理档案冻结的快照，之后不再重算。
// PayoutID 在结算单创建时绑定，绑定后的记录不会再被其他结算单覆盖。
type AgentSale struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                                         // 主键
	AgentID          uint           `gorm:"not null;index" json:"agent_id"`                                               // 代理ID
	OrderID          uint           `gorm:"not null;index;uniqueIndex:idx_agent_sale_order" json:"order_id"`              // 订单ID
	SaleAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"sale_amount"`                     // 销售额
	CommissionRate   Money          `gorm:"type:decimal(10,2);not null;default:0" json:"commission_rate"`                 // 佣金比例快照
	CommissionAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`               // 佣金金额
	CommissionStatus string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"commission_status"`   // 佣金状态
	PayoutID         *uint          `gorm:"index" json:"payout_id,omitempty"`                                             // 绑定的结算单ID
	SaleDate         time.Time      `gorm:"index" json:"sale_date"`                                                       // 销售时间
	CommissionPaidAt *time.Time     `gorm:"index" json:"commission_paid_at,omitempty"`                                    // 佣金发放时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                                      // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                                                   // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                               // 软删除时间

	Agent *ProductAgent `gorm:"foreignKey:AgentID" json:"agent,omitempty"` // 代理档案
	Order *Order        `gorm:"foreignKey:OrderID" json:"order,omitempty"` // 关联订单
}

// TableName 指定表名
func (AgentSale) TableName() string {
	return "agent_sales"
}
