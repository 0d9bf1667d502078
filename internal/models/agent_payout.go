package models

import (
	"time"

	"gorm.io/gorm"
)

// AgentPayout 代理佣金结算单
type AgentPayout struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                                      // 主键
	AgentID    uint           `gorm:"not null;index" json:"agent_id"`                                            // 代理ID
	Amount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                       // 结算金额
	SalesCount int            `gorm:"not null;default:0" json:"sales_count"`                                     // 覆盖的销售记录数
	FromDate   time.Time      `gorm:"index;not null" json:"from_date"`                                           // 覆盖区间起
	ToDate     time.Time      `gorm:"index;not null" json:"to_date"`                                             // 覆盖区间止
	Status     string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`           // 结算状态
	CreatedBy  *uint          `gorm:"index" json:"created_by,omitempty"`                                         // 创建管理员ID
	PaidAt     *time.Time     `gorm:"index" json:"paid_at,omitempty"`                                            // 完成时间
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                                   // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                                                // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                                            // 软删除时间

	Agent *ProductAgent `gorm:"foreignKey:AgentID" json:"agent,omitempty"` // 代理档案
}

// TableName 指定表名
func (AgentPayout) TableName() string {
	return "agent_payouts"
}
