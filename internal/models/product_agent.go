package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductAgent 商品推广代理申请/档案
//
// (product_id, user_id) 不做唯一约束：驳回后允许新建一行重新申请，
// 业务侧只看该组合下最新一条记录的状态。
type ProductAgent struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                               // 主键
	ProductID           uint           `gorm:"not null;index:idx_agent_product_user" json:"product_id"`           // 商品ID
	UserID              uint           `gorm:"not null;index:idx_agent_product_user" json:"user_id"`               // 用户ID
	Status              string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`    // 申请状态
	AgentCode           string         `gorm:"type:varchar(32);uniqueIndex" json:"agent_code,omitempty"`           // 推广码（审核通过时生成）
	CommissionRate      Money          `gorm:"type:decimal(10,2);not null;default:0" json:"commission_rate"`       // 佣金比例（百分比）
	RejectionReason     string         `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`                // 驳回原因
	ApprovedBy          *uint          `gorm:"index" json:"approved_by,omitempty"`                                 // 审核管理员ID
	ApprovedAt          *time.Time     `json:"approved_at,omitempty"`                                              // 审核时间
	TotalSalesValue     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_sales_value"`     // 累计销售额
	TotalCommission     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_commission"`      // 累计佣金
	PendingCommission   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"pending_commission"`    // 待结算佣金
	PaidCommission      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"paid_commission"`       // 已结算佣金
	TotalOrdersReferred int            `gorm:"not null;default:0" json:"total_orders_referred"`                    // 累计推荐订单数
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                            // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductAgent) TableName() string {
	return "product_agents"
}
