package models

import (
	"time"

	"gorm.io/gorm"
)

// BusinessDocument 商户资质文档
//
// 文档可选关联一个商品；通过文档审核会级联放行该商品。
type BusinessDocument struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                                      // 主键
	MerchantID       uint           `gorm:"index;not null" json:"merchant_id"`                                         // 商户ID
	ProductID        *uint          `gorm:"index" json:"product_id,omitempty"`                                         // 关联商品ID
	DocumentType     string         `gorm:"type:varchar(50);not null" json:"document_type"`                            // 文档类型
	FileURL          string         `gorm:"type:text" json:"file_url,omitempty"`                                       // 文件地址
	ApprovalStatus   string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`  // 审核状态
	UploadedAt       time.Time      `gorm:"index" json:"uploaded_at"`                                                  // 上传时间
	ApprovalDeadline *time.Time     `gorm:"index" json:"approval_deadline,omitempty"`                                  // 审核期限（仅用于提醒）
	ApprovedBy       *uint          `gorm:"index" json:"approved_by,omitempty"`                                        // 审核管理员ID
	ApprovedAt       *time.Time     `json:"approved_at,omitempty"`                                                     // 审核时间
	RejectionReason  string         `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`                       // 驳回原因
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                                   // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                                                // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                            // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (BusinessDocument) TableName() string {
	return "business_documents"
}
