package repository

import (
	"errors"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AgentRepository 推广代理数据访问接口
type AgentRepository interface {
	CreateApplication(agent *models.ProductAgent) error
	GetByID(id uint) (*models.ProductAgent, error)
	GetByIDForUpdate(id uint) (*models.ProductAgent, error)
	GetLatestByProductAndUser(productID, userID uint) (*models.ProductAgent, error)
	GetApprovedByCode(code string) (*models.ProductAgent, error)
	CodeExists(code string) (bool, error)
	Updates(id uint, updates map[string]interface{}) error
	AccumulateSale(agentID uint, saleAmount, commissionAmount decimal.Decimal) error
	SettlePayout(agentID uint, amount decimal.Decimal, now time.Time) (int64, error)
	CreateSale(sale *models.AgentSale) error
	GetSaleByID(id uint) (*models.AgentSale, error)
	ListSales(filter AgentSaleListFilter) ([]models.AgentSale, int64, error)
	UpdateSale(id uint, updates map[string]interface{}) error
	TransitionSaleCommission(id uint, fromStatus string, updates map[string]interface{}) (int64, error)
	ListUnboundApprovedSalesForUpdate(agentID uint, from, to time.Time) ([]models.AgentSale, error)
	BindSalesToPayout(ids []uint, payoutID uint, now time.Time) error
	MarkPayoutSalesPaid(payoutID uint, now time.Time) (int64, error)
	CreatePayout(payout *models.AgentPayout) error
	GetPayoutByID(id uint) (*models.AgentPayout, error)
	GetPayoutByIDForUpdate(id uint) (*models.AgentPayout, error)
	TransitionPayout(id uint, fromStatus string, updates map[string]interface{}) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AgentRepository
}

// GormAgentRepository GORM 实现
type GormAgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository 创建代理仓库
func NewAgentRepository(db *gorm.DB) *GormAgentRepository {
	return &GormAgentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAgentRepository) WithTx(tx *gorm.DB) AgentRepository {
	if tx == nil {
		return r
	}
	return &GormAgentRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormAgentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// CreateApplication 创建代理申请
func (r *GormAgentRepository) CreateApplication(agent *models.ProductAgent) error {
	return r.db.Create(agent).Error
}

// GetByID 根据 ID 获取代理档案
func (r *GormAgentRepository) GetByID(id uint) (*models.ProductAgent, error) {
	if id == 0 {
		return nil, nil
	}
	var agent models.ProductAgent
	if err := r.db.First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetByIDForUpdate 根据 ID 获取代理档案并加行锁
func (r *GormAgentRepository) GetByIDForUpdate(id uint) (*models.ProductAgent, error) {
	if id == 0 {
		return nil, nil
	}
	var agent models.ProductAgent
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetLatestByProductAndUser 获取 (商品, 用户) 组合下最新一条申请
func (r *GormAgentRepository) GetLatestByProductAndUser(productID, userID uint) (*models.ProductAgent, error) {
	if productID == 0 || userID == 0 {
		return nil, nil
	}
	var agent models.ProductAgent
	err := r.db.Where("product_id = ? AND user_id = ?", productID, userID).
		Order("id desc").
		First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// GetApprovedByCode 根据推广码获取已通过审核的代理
func (r *GormAgentRepository) GetApprovedByCode(code string) (*models.ProductAgent, error) {
	if code == "" {
		return nil, nil
	}
	var agent models.ProductAgent
	err := r.db.Where("agent_code = ? AND status = ?", code, constants.AgentStatusApproved).
		First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// CodeExists 判断推广码是否已被占用
func (r *GormAgentRepository) CodeExists(code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.ProductAgent{}).Where("agent_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Updates 按字段更新代理档案
func (r *GormAgentRepository) Updates(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.ProductAgent{}).Where("id = ?", id).Updates(updates).Error
}

// AccumulateSale 归因时累加代理统计（同事务内调用）
func (r *GormAgentRepository) AccumulateSale(agentID uint, saleAmount, commissionAmount decimal.Decimal) error {
	if agentID == 0 {
		return errors.New("invalid agent id")
	}
	return r.db.Model(&models.ProductAgent{}).
		Where("id = ?", agentID).
		Updates(map[string]interface{}{
			"total_sales_value":     gorm.Expr("total_sales_value + ?", saleAmount),
			"total_commission":      gorm.Expr("total_commission + ?", commissionAmount),
			"pending_commission":    gorm.Expr("pending_commission + ?", commissionAmount),
			"total_orders_referred": gorm.Expr("total_orders_referred + 1"),
		}).Error
}

// SettlePayout 结算完成时迁移佣金余额（单语句 CAS）
//
// 仅当 pending_commission 足额时生效；0 行表示余额不足。
func (r *GormAgentRepository) SettlePayout(agentID uint, amount decimal.Decimal, now time.Time) (int64, error) {
	if agentID == 0 {
		return 0, errors.New("invalid agent id")
	}
	result := r.db.Model(&models.ProductAgent{}).
		Where("id = ? AND pending_commission >= ?", agentID, amount).
		Updates(map[string]interface{}{
			"pending_commission": gorm.Expr("pending_commission - ?", amount),
			"paid_commission":    gorm.Expr("paid_commission + ?", amount),
			"updated_at":         now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CreateSale 创建销售记录
func (r *GormAgentRepository) CreateSale(sale *models.AgentSale) error {
	return r.db.Create(sale).Error
}

// GetSaleByID 根据 ID 获取销售记录
func (r *GormAgentRepository) GetSaleByID(id uint) (*models.AgentSale, error) {
	if id == 0 {
		return nil, nil
	}
	var sale models.AgentSale
	if err := r.db.First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// ListSales 查询销售记录列表
func (r *GormAgentRepository) ListSales(filter AgentSaleListFilter) ([]models.AgentSale, int64, error) {
	query := r.db.Model(&models.AgentSale{})
	if filter.AgentID > 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.CommissionStatus != "" {
		query = query.Where("commission_status = ?", filter.CommissionStatus)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []models.AgentSale
	if err := applyPagination(query.Order("sale_date desc"), filter.Page, filter.PageSize).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// UpdateSale 按字段更新销售记录
func (r *GormAgentRepository) UpdateSale(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.AgentSale{}).Where("id = ?", id).Updates(updates).Error
}

// TransitionSaleCommission 销售佣金状态迁移（单语句 CAS）
func (r *GormAgentRepository) TransitionSaleCommission(id uint, fromStatus string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.AgentSale{}).
		Where("id = ? AND commission_status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListUnboundApprovedSalesForUpdate 锁定区间内已审核且未绑定结算单的销售记录
func (r *GormAgentRepository) ListUnboundApprovedSalesForUpdate(agentID uint, from, to time.Time) ([]models.AgentSale, error) {
	if agentID == 0 {
		return []models.AgentSale{}, nil
	}
	var sales []models.AgentSale
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("agent_id = ? AND commission_status = ? AND payout_id IS NULL AND sale_date >= ? AND sale_date <= ?",
			agentID, constants.CommissionStatusApproved, from, to).
		Order("id asc").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// BindSalesToPayout 将销售记录绑定到结算单
func (r *GormAgentRepository) BindSalesToPayout(ids []uint, payoutID uint, now time.Time) error {
	if len(ids) == 0 || payoutID == 0 {
		return nil
	}
	return r.db.Model(&models.AgentSale{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"payout_id":  payoutID,
			"updated_at": now,
		}).Error
}

// MarkPayoutSalesPaid 将结算单覆盖的销售记录标记为已发放
func (r *GormAgentRepository) MarkPayoutSalesPaid(payoutID uint, now time.Time) (int64, error) {
	if payoutID == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.AgentSale{}).
		Where("payout_id = ? AND commission_status = ?", payoutID, constants.CommissionStatusApproved).
		Updates(map[string]interface{}{
			"commission_status":  constants.CommissionStatusPaid,
			"commission_paid_at": now,
			"updated_at":         now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CreatePayout 创建结算单
func (r *GormAgentRepository) CreatePayout(payout *models.AgentPayout) error {
	return r.db.Create(payout).Error
}

// GetPayoutByID 根据 ID 获取结算单
func (r *GormAgentRepository) GetPayoutByID(id uint) (*models.AgentPayout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.AgentPayout
	if err := r.db.First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetPayoutByIDForUpdate 根据 ID 获取结算单并加行锁
func (r *GormAgentRepository) GetPayoutByIDForUpdate(id uint) (*models.AgentPayout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.AgentPayout
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// TransitionPayout 结算单状态迁移（单语句 CAS）
func (r *GormAgentRepository) TransitionPayout(id uint, fromStatus string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.AgentPayout{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
