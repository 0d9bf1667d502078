package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                                   // 主键
	Name               string         `gorm:"type:varchar(200);not null" json:"name"`                                 // 商品名称
	Description        string         `gorm:"type:text" json:"description"`                                           // 商品描述
	Price              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                     // 单价
	StockQuantity      int            `gorm:"not null;default:0" json:"stock_quantity"`                               // 库存数量（购物车占用即扣减）
	DiscountPercentage Money          `gorm:"type:decimal(10,2);not null;default:0" json:"discount_percentage"`       // 折扣百分比（0-100）
	ImageURL           string         `gorm:"type:text" json:"image_url"`                                             // 商品图片地址
	ApprovalStatus     string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"` // 审核状态
	IsVisible          bool           `gorm:"not null;default:false;index" json:"is_visible"`                         // 是否对买家可见（仅审核通过后为真）
	UploadedBy         uint           `gorm:"index;not null" json:"uploaded_by"`                                      // 上传商户ID
	ApprovedBy         *uint          `gorm:"index" json:"approved_by,omitempty"`                                     // 审核管理员ID
	ApprovedAt         *time.Time     `json:"approved_at,omitempty"`                                                  // 审核通过时间
	RejectionReason    string         `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`                    // 驳回原因
	ApprovalDeadline   *time.Time     `gorm:"index" json:"approval_deadline,omitempty"`                               // 审核期限（上传时间 + 7 天，仅用于提醒）
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                                // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                                             // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                         // 软删除时间

	Merchant *Merchant `gorm:"foreignKey:UploadedBy" json:"merchant,omitempty"` // 上传商户
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
