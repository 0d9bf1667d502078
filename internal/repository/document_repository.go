package repository

import (
	"errors"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/models"

	"gorm.io/gorm"
)

// DocumentRepository 商户资质文档数据访问接口
type DocumentRepository interface {
	Create(doc *models.BusinessDocument) error
	GetByID(id uint) (*models.BusinessDocument, error)
	List(filter DocumentListFilter) ([]models.BusinessDocument, int64, error)
	TransitionApproval(id uint, fromStatus string, updates map[string]interface{}) (int64, error)
	ListOverdue(before time.Time) ([]models.BusinessDocument, error)
	WithTx(tx *gorm.DB) *GormDocumentRepository
}

// GormDocumentRepository GORM 实现
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDocumentRepository) WithTx(tx *gorm.DB) *GormDocumentRepository {
	if tx == nil {
		return r
	}
	return &GormDocumentRepository{db: tx}
}

// Create 创建文档
func (r *GormDocumentRepository) Create(doc *models.BusinessDocument) error {
	return r.db.Create(doc).Error
}

// GetByID 根据 ID 获取文档
func (r *GormDocumentRepository) GetByID(id uint) (*models.BusinessDocument, error) {
	if id == 0 {
		return nil, nil
	}
	var doc models.BusinessDocument
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// List 查询文档列表
func (r *GormDocumentRepository) List(filter DocumentListFilter) ([]models.BusinessDocument, int64, error) {
	query := r.db.Model(&models.BusinessDocument{})
	if filter.MerchantID > 0 {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []models.BusinessDocument
	if err := applyPagination(query.Order("uploaded_at desc"), filter.Page, filter.PageSize).Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// TransitionApproval 审核状态迁移（单语句 CAS）
func (r *GormDocumentRepository) TransitionApproval(id uint, fromStatus string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.BusinessDocument{}).
		Where("id = ? AND approval_status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListOverdue 查询逾期未审核的文档
func (r *GormDocumentRepository) ListOverdue(before time.Time) ([]models.BusinessDocument, error) {
	var docs []models.BusinessDocument
	if err := r.db.Where("approval_status = ? AND uploaded_at < ?", constants.ApprovalStatusPending, before).
		Order("uploaded_at asc").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
