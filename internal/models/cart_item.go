package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项
//
// Price 存的是行小计（最近一次变更时的单价 × 数量），不是单价；
// 购物车汇总直接按 Price 累加。
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                         // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // 用户ID
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // 商品ID
	Quantity  int            `gorm:"not null" json:"quantity"`                                     // 数量（≥1）
	Price     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`           // 行小计
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart"
}
