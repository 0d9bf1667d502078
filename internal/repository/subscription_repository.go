package repository

import (
	"errors"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository 商户订阅数据访问接口
type SubscriptionRepository interface {
	Create(sub *models.MerchantSubscription) error
	GetByID(id uint) (*models.MerchantSubscription, error)
	GetByMerchantID(merchantID uint) (*models.MerchantSubscription, error)
	GetByMerchantIDForUpdate(merchantID uint) (*models.MerchantSubscription, error)
	Updates(id uint, updates map[string]interface{}) error
	SuspendExpired(now time.Time) (int64, error)
	ListByStatus(status string, page, pageSize int) ([]models.MerchantSubscription, int64, error)
	CreatePayment(payment *models.SubscriptionPayment) error
	WithTx(tx *gorm.DB) SubscriptionRepository
}

// GormSubscriptionRepository GORM 实现
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建订阅仓库
func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSubscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	if tx == nil {
		return r
	}
	return &GormSubscriptionRepository{db: tx}
}

// Create 创建订阅
func (r *GormSubscriptionRepository) Create(sub *models.MerchantSubscription) error {
	return r.db.Create(sub).Error
}

// GetByID 根据 ID 获取订阅
func (r *GormSubscriptionRepository) GetByID(id uint) (*models.MerchantSubscription, error) {
	if id == 0 {
		return nil, nil
	}
	var sub models.MerchantSubscription
	if err := r.db.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetByMerchantID 根据商户 ID 获取订阅
func (r *GormSubscriptionRepository) GetByMerchantID(merchantID uint) (*models.MerchantSubscription, error) {
	if merchantID == 0 {
		return nil, nil
	}
	var sub models.MerchantSubscription
	err := r.db.Where("merchant_id = ?", merchantID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByMerchantIDForUpdate 根据商户 ID 获取订阅并加行锁
func (r *GormSubscriptionRepository) GetByMerchantIDForUpdate(merchantID uint) (*models.MerchantSubscription, error) {
	if merchantID == 0 {
		return nil, nil
	}
	var sub models.MerchantSubscription
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("merchant_id = ?", merchantID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Updates 按字段更新订阅
func (r *GormSubscriptionRepository) Updates(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.MerchantSubscription{}).Where("id = ?", id).Updates(updates).Error
}

// SuspendExpired 批量暂停到期订阅（单语句 CAS，可重复执行）
func (r *GormSubscriptionRepository) SuspendExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.MerchantSubscription{}).
		Where("status = ? AND period_end < ?", constants.SubscriptionStatusActive, now).
		Updates(map[string]interface{}{
			"status":       constants.SubscriptionStatusSuspended,
			"suspended_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListByStatus 按状态分页查询订阅
func (r *GormSubscriptionRepository) ListByStatus(status string, page, pageSize int) ([]models.MerchantSubscription, int64, error) {
	query := r.db.Model(&models.MerchantSubscription{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.MerchantSubscription
	if err := applyPagination(query.Order("period_end asc"), page, pageSize).Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// CreatePayment 创建订阅续费流水
func (r *GormSubscriptionRepository) CreatePayment(payment *models.SubscriptionPayment) error {
	return r.db.Create(payment).Error
}
