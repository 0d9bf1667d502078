package repository

import (
	"errors"

	"github.com/vendora/vendora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByTransactionID(transactionID string) (*models.Payment, error)
	GetByTransactionIDForUpdate(transactionID string) (*models.Payment, error)
	Updates(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByID 根据 ID 获取支付记录
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	if id == 0 {
		return nil, nil
	}
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByTransactionID 根据第三方流水号获取支付记录
func (r *GormPaymentRepository) GetByTransactionID(transactionID string) (*models.Payment, error) {
	if transactionID == "" {
		return nil, nil
	}
	var payment models.Payment
	err := r.db.Where("transaction_id = ?", transactionID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByTransactionIDForUpdate 根据第三方流水号获取支付记录并加行锁
func (r *GormPaymentRepository) GetByTransactionIDForUpdate(transactionID string) (*models.Payment, error) {
	if transactionID == "" {
		return nil, nil
	}
	var payment models.Payment
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Updates 按字段更新支付记录
func (r *GormPaymentRepository) Updates(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Payment{}).Where("id = ?", id).Updates(updates).Error
}
