package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant 商户表
type Merchant struct {
	ID        uint           `gorm:"primarykey" json:"id"`                           // 主键
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`         // 商户名称
	Email     string         `gorm:"type:varchar(200);uniqueIndex" json:"email"`     // 联系邮箱
	Status    string         `gorm:"type:varchar(20);index" json:"status,omitempty"` // 商户状态
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                     // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
