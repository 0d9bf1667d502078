package models

import (
	"time"

	"gorm.io/gorm"
)

// MerchantSubscription 商户订阅
//
// active → suspended 仅由到期扫描驱动；suspended → active 仅由续费提交驱动。
type MerchantSubscription struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                             // 主键
	MerchantID  uint           `gorm:"not null;uniqueIndex" json:"merchant_id"`                          // 商户ID
	PlanName    string         `gorm:"type:varchar(100)" json:"plan_name,omitempty"`                     // 套餐名称
	Status      string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`   // 订阅状态
	PeriodEnd   time.Time      `gorm:"index;not null" json:"period_end"`                                 // 当前周期结束时间
	SuspendedAt *time.Time     `gorm:"index" json:"suspended_at,omitempty"`                              // 暂停时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"` // 商户
}

// TableName 指定表名
func (MerchantSubscription) TableName() string {
	return "merchant_subscriptions"
}

// SubscriptionPayment 订阅续费记录
type SubscriptionPayment struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                 // 主键
	SubscriptionID uint           `gorm:"not null;index" json:"subscription_id"`                // 订阅ID
	MerchantID     uint           `gorm:"not null;index" json:"merchant_id"`                    // 商户ID
	Amount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 续费金额
	PeriodEnd      time.Time      `gorm:"not null" json:"period_end"`                           // 续费后的周期结束时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                           // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (SubscriptionPayment) TableName() string {
	return "subscription_payments"
}
