package repository

import (
	"errors"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByIDForUpdate(id uint) (*models.Product, error)
	List(filter ProductListFilter) ([]models.Product, int64, error)
	Updates(id uint, updates map[string]interface{}) error
	ReserveStock(productID uint, quantity int) (int64, error)
	RestoreStock(productID uint, quantity int) (int64, error)
	TransitionApproval(id uint, fromStatus string, updates map[string]interface{}) (int64, error)
	ListOverdue(before time.Time) ([]models.Product, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDForUpdate 根据 ID 获取商品并加行锁
func (r *GormProductRepository) GetByIDForUpdate(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// List 查询商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.MerchantID > 0 {
		query = query.Where("uploaded_by = ?", filter.MerchantID)
	}
	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.OnlyVisible {
		query = query.Where("is_visible = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := applyPagination(query.Order("created_at desc"), filter.Page, filter.PageSize).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Updates 按字段更新商品
func (r *GormProductRepository) Updates(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error
}

// ReserveStock 扣减库存（加入购物车即占用）
//
// 库存校验与扣减在同一条语句里完成，返回受影响行数；
// 0 行表示库存不足或商品不存在。
func (r *GormProductRepository) ReserveStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock reserve params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestoreStock 回补库存（购物车项删除或减量）
func (r *GormProductRepository) RestoreStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock restore params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// TransitionApproval 审核状态迁移（单语句 CAS）
//
// 仅当当前状态等于 fromStatus 时才写入 updates；0 行表示已被处理过。
func (r *GormProductRepository) TransitionApproval(id uint, fromStatus string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND approval_status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListOverdue 查询逾期未审核的商品
func (r *GormProductRepository) ListOverdue(before time.Time) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("approval_status = ? AND created_at < ?", constants.ApprovalStatusPending, before).
		Order("created_at asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
