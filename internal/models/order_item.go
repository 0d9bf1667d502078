package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
//
// Price 是下单时的单价快照，创建后不再变化。
type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                // 主键
	OrderID   uint           `gorm:"index;not null" json:"order_id"`                      // 订单ID
	ProductID *uint          `gorm:"index" json:"product_id,omitempty"`                   // 商品ID（商品删除后置空）
	Quantity  int            `gorm:"not null" json:"quantity"`                            // 数量
	Price     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价快照
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
