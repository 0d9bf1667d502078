package repository

import (
	"errors"

	"github.com/vendora/vendora/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem, payments []models.Payment, financials []models.Financial) error
	GetByID(id uint) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	Updates(id uint, updates map[string]interface{}) error
	CreateItem(item *models.OrderItem) error
	GetItemByID(id uint) (*models.OrderItem, error)
	ListItems(orderID uint) ([]models.OrderItem, error)
	UpdateItem(id uint, updates map[string]interface{}) error
	DeleteItem(id uint) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单及其子集合（订单项、支付记录、财务流水）
//
// 子集合在父订单 ID 落地后批量写入；任一写入失败由外层事务整体回滚。
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem, payments []models.Payment, financials []models.Financial) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	if len(items) > 0 {
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	if len(payments) > 0 {
		for i := range payments {
			payments[i].OrderID = order.ID
		}
		if err := r.db.Create(&payments).Error; err != nil {
			return err
		}
	}
	if len(financials) > 0 {
		for i := range financials {
			financials[i].OrderID = order.ID
		}
		if err := r.db.Create(&financials).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单（含子集合）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	query := r.db.Preload("Items").Preload("Payments").Preload("Financials")
	if err := query.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 查询订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AgentID > 0 {
		query = query.Where("referred_by_agent_id = ?", filter.AgentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := applyPagination(query.Order("created_at desc"), filter.Page, filter.PageSize).
		Preload("Items").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Updates 按字段更新订单
func (r *GormOrderRepository) Updates(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// CreateItem 新增订单项
func (r *GormOrderRepository) CreateItem(item *models.OrderItem) error {
	return r.db.Create(item).Error
}

// GetItemByID 根据 ID 获取订单项
func (r *GormOrderRepository) GetItemByID(id uint) (*models.OrderItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.OrderItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems 获取订单的全部订单项
func (r *GormOrderRepository) ListItems(orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem 按字段更新订单项
func (r *GormOrderRepository) UpdateItem(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.OrderItem{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteItem 删除订单项
func (r *GormOrderRepository) DeleteItem(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Where("id = ?", id).Delete(&models.OrderItem{}).Error
}
