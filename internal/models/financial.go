package models

import (
	"time"

	"gorm.io/gorm"
)

// Financial 订单财务流水（收入/支出/退款/税费/运费）
type Financial struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                // 主键
	OrderID     uint           `gorm:"index;not null" json:"order_id"`                      // 订单ID
	Type        string         `gorm:"type:varchar(20);index;not null" json:"type"`         // 流水类型
	Amount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 金额
	Description string         `gorm:"type:varchar(255)" json:"description,omitempty"`      // 备注
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Financial) TableName() string {
	return "financials"
}
