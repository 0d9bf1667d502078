package repository

import (
	"errors"

	"github.com/vendora/vendora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Create(item *models.CartItem) error
	GetByID(id uint) (*models.CartItem, error)
	GetByIDForUpdate(id uint) (*models.CartItem, error)
	GetByUserAndProductForUpdate(userID, productID uint) (*models.CartItem, error)
	ListByUser(userID uint) ([]models.CartItem, error)
	Updates(id uint, updates map[string]interface{}) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Create 创建购物车项
func (r *GormCartRepository) Create(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// GetByID 根据 ID 获取购物车项
func (r *GormCartRepository) GetByID(id uint) (*models.CartItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.CartItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByIDForUpdate 根据 ID 获取购物车项并加行锁
func (r *GormCartRepository) GetByIDForUpdate(id uint) (*models.CartItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.CartItem
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByUserAndProductForUpdate 按用户与商品获取购物车项并加行锁
func (r *GormCartRepository) GetByUserAndProductForUpdate(userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser 获取用户购物车项
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("updated_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Updates 按字段更新购物车项
func (r *GormCartRepository) Updates(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.CartItem{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 删除购物车项
func (r *GormCartRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Where("id = ?", id).Delete(&models.CartItem{}).Error
}
