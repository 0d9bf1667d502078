package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const agentCodeSuffixLength = 6

// AgentService 推广代理服务
//
// 销售归因、佣金计提与结算在各自的事务内整体生效。
// 佣金比例在归因时冻结进销售记录，之后调整代理比例不影响已有记录。
type AgentService struct {
	agentRepo   repository.AgentRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	defaultRate decimal.Decimal
	now         func() time.Time
}

// NewAgentService 创建代理服务
func NewAgentService(agentRepo repository.AgentRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository, defaultRate float64, now func() time.Time) *AgentService {
	if defaultRate <= 0 {
		defaultRate = 5.0
	}
	if now == nil {
		now = time.Now
	}
	return &AgentService{
		agentRepo:   agentRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		defaultRate: decimal.NewFromFloat(defaultRate),
		now:         now,
	}
}

// Apply 申请成为商品推广代理
//
// 同一 (商品, 用户) 组合以最新一条申请记录的状态做准入判断，
// 待审、已通过、已驳回各自返回独立错误。
func (s *AgentService) Apply(productID, userID uint) (*models.ProductAgent, error) {
	if productID == 0 || userID == 0 {
		return nil, ErrNotFound
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if product.ApprovalStatus == constants.ApprovalStatusRejected {
		return nil, ErrProductRejected
	}

	latest, err := s.agentRepo.GetLatestByProductAndUser(productID, userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		switch latest.Status {
		case constants.AgentStatusPending:
			return nil, ErrAgentPendingReview
		case constants.AgentStatusApproved:
			return nil, ErrAlreadyAgent
		case constants.AgentStatusRejected:
			return nil, fmt.Errorf("%w: %s", ErrAgentPreviouslyRejected, latest.RejectionReason)
		}
	}

	agent := &models.ProductAgent{
		ProductID: productID,
		UserID:    userID,
		Status:    constants.AgentStatusPending,
	}
	if err := s.agentRepo.CreateApplication(agent); err != nil {
		return nil, err
	}
	logger.Infow("agent_apply_success",
		"agent_id", agent.ID,
		"product_id", productID,
		"user_id", userID,
	)
	return agent, nil
}

// ApproveAgent 审核通过代理申请
//
// 通过时生成唯一推广码并冻结佣金比例；比例缺省时取配置的默认值。
func (s *AgentService) ApproveAgent(agentID, reviewerID uint, commissionRate *decimal.Decimal) (*models.ProductAgent, error) {
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrNotFound
	}
	if agent.Status != constants.AgentStatusPending {
		return nil, ErrAlreadyProcessed
	}

	rate := s.defaultRate
	if commissionRate != nil && commissionRate.IsPositive() {
		rate = *commissionRate
	}

	code, err := s.generateUniqueAgentCode(agent.ProductID, agent.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.agentRepo.Updates(agentID, map[string]interface{}{
		"status":          constants.AgentStatusApproved,
		"agent_code":      code,
		"commission_rate": models.NewMoneyFromDecimal(rate),
		"approved_by":     reviewerID,
		"approved_at":     now,
		"updated_at":      now,
	}); err != nil {
		return nil, err
	}

	logger.Infow("agent_approve_success",
		"agent_id", agentID,
		"agent_code", code,
		"commission_rate", rate.String(),
		"reviewer_id", reviewerID,
	)
	return s.agentRepo.GetByID(agentID)
}

// RejectAgent 驳回代理申请，理由必填
func (s *AgentService) RejectAgent(agentID, reviewerID uint, reason string) (*models.ProductAgent, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}

	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrNotFound
	}
	if agent.Status != constants.AgentStatusPending {
		return nil, ErrAlreadyProcessed
	}

	now := s.now()
	if err := s.agentRepo.Updates(agentID, map[string]interface{}{
		"status":           constants.AgentStatusRejected,
		"rejection_reason": reason,
		"approved_by":      reviewerID,
		"approved_at":      now,
		"updated_at":       now,
	}); err != nil {
		return nil, err
	}

	logger.Infow("agent_reject_success",
		"agent_id", agentID,
		"reviewer_id", reviewerID,
	)
	return s.agentRepo.GetByID(agentID)
}

// RecordSale 按推广码归因订单销售
//
// 销售记录创建、代理累计值更新与订单归因标记必须在同一事务内完成，
// 部分归因视为数据损坏。佣金按代理当前比例计算并冻结进记录。
func (s *AgentService) RecordSale(orderID uint, agentCode string) (*models.AgentSale, error) {
	agentCode = strings.TrimSpace(agentCode)
	if orderID == 0 || agentCode == "" {
		return nil, ErrInvalidAgent
	}

	var sale *models.AgentSale
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		agentRepo := s.agentRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		agent, err := agentRepo.GetApprovedByCode(agentCode)
		if err != nil {
			return err
		}
		if agent == nil {
			return ErrInvalidAgent
		}

		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrNotFound
		}
		if order.ReferredByAgentID != nil {
			return ErrSaleAlreadyRecorded
		}

		saleAmount := order.TotalPrice.Decimal
		rate := agent.CommissionRate.Decimal
		commission := saleAmount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)

		now := s.now()
		sale = &models.AgentSale{
			AgentID:          agent.ID,
			OrderID:          orderID,
			SaleAmount:       models.NewMoneyFromDecimal(saleAmount),
			CommissionRate:   models.NewMoneyFromDecimal(rate),
			CommissionAmount: models.NewMoneyFromDecimal(commission),
			CommissionStatus: constants.CommissionStatusPending,
			SaleDate:         now,
		}
		if err := agentRepo.CreateSale(sale); err != nil {
			return err
		}
		if err := agentRepo.AccumulateSale(agent.ID, saleAmount, commission); err != nil {
			return err
		}
		return orderRepo.Updates(orderID, map[string]interface{}{
			"referred_by_agent_id": agent.ID,
			"agent_code_used":      agentCode,
			"updated_at":           now,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("agent_sale_record_success",
		"sale_id", sale.ID,
		"agent_id", sale.AgentID,
		"order_id", orderID,
		"commission_amount", sale.CommissionAmount.String(),
	)
	return sale, nil
}

// ApproveSale 审核通过销售佣金，使其可进入结算
func (s *AgentService) ApproveSale(saleID, reviewerID uint) (*models.AgentSale, error) {
	affected, err := s.agentRepo.TransitionSaleCommission(saleID, constants.CommissionStatusPending, map[string]interface{}{
		"commission_status": constants.CommissionStatusApproved,
		"updated_at":        s.now(),
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		sale, err := s.agentRepo.GetSaleByID(saleID)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyProcessed
	}
	logger.Infow("agent_sale_approve_success",
		"sale_id", saleID,
		"reviewer_id", reviewerID,
	)
	return s.agentRepo.GetSaleByID(saleID)
}

// CreatePayout 创建佣金结算单
//
// 区间内已审核且未被其他结算单占用的销售记录在创建时即绑定本单，
// 重叠时间窗不会重复占用同一笔佣金。
func (s *AgentService) CreatePayout(agentID, adminID uint, amount models.Money, fromDate, toDate time.Time) (*models.AgentPayout, error) {
	if agentID == 0 || !amount.Decimal.IsPositive() || toDate.Before(fromDate) {
		return nil, ErrInvalidPayoutInput
	}

	var payout *models.AgentPayout
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		agentRepo := s.agentRepo.WithTx(tx)

		agent, err := agentRepo.GetByIDForUpdate(agentID)
		if err != nil {
			return err
		}
		if agent == nil {
			return ErrNotFound
		}

		sales, err := agentRepo.ListUnboundApprovedSalesForUpdate(agentID, fromDate, toDate)
		if err != nil {
			return err
		}
		approvedSum := decimal.Zero
		saleIDs := make([]uint, 0, len(sales))
		for i := range sales {
			approvedSum = approvedSum.Add(sales[i].CommissionAmount.Decimal)
			saleIDs = append(saleIDs, sales[i].ID)
		}
		if amount.Decimal.GreaterThan(approvedSum) {
			return ErrExceedsApprovedCommission
		}

		now := s.now()
		payout = &models.AgentPayout{
			AgentID:    agentID,
			Amount:     amount,
			SalesCount: len(saleIDs),
			FromDate:   fromDate,
			ToDate:     toDate,
			Status:     constants.PayoutStatusPending,
			CreatedBy:  &adminID,
		}
		if err := agentRepo.CreatePayout(payout); err != nil {
			return err
		}
		return agentRepo.BindSalesToPayout(saleIDs, payout.ID, now)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("agent_payout_create_success",
		"payout_id", payout.ID,
		"agent_id", agentID,
		"amount", payout.Amount.String(),
		"sales_count", payout.SalesCount,
	)
	return payout, nil
}

// CompletePayout 完成结算单
//
// 结算单状态、代理佣金余额迁移与覆盖销售记录的发放标记在同一事务内
// 生效。待结算余额精确减少 amount，已结算余额精确增加 amount。
func (s *AgentService) CompletePayout(payoutID, adminID uint) (*models.AgentPayout, error) {
	var payout *models.AgentPayout
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		agentRepo := s.agentRepo.WithTx(tx)

		existing, err := agentRepo.GetPayoutByIDForUpdate(payoutID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}

		now := s.now()
		affected, err := agentRepo.TransitionPayout(payoutID, constants.PayoutStatusPending, map[string]interface{}{
			"status":     constants.PayoutStatusCompleted,
			"paid_at":    now,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyProcessed
		}

		settled, err := agentRepo.SettlePayout(existing.AgentID, existing.Amount.Decimal, now)
		if err != nil {
			return err
		}
		if settled == 0 {
			return ErrInsufficientCommission
		}

		if _, err := agentRepo.MarkPayoutSalesPaid(payoutID, now); err != nil {
			return err
		}

		payout, err = agentRepo.GetPayoutByID(payoutID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("agent_payout_complete_success",
		"payout_id", payoutID,
		"agent_id", payout.AgentID,
		"amount", payout.Amount.String(),
		"admin_id", adminID,
	)
	return payout, nil
}

// GetAgent 获取代理档案
func (s *AgentService) GetAgent(agentID uint) (*models.ProductAgent, error) {
	agent, err := s.agentRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrNotFound
	}
	return agent, nil
}

// GetPayout 获取结算单
func (s *AgentService) GetPayout(payoutID uint) (*models.AgentPayout, error) {
	payout, err := s.agentRepo.GetPayoutByID(payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrNotFound
	}
	return payout, nil
}

// ListSales 分页查询销售记录
func (s *AgentService) ListSales(filter repository.AgentSaleListFilter) ([]models.AgentSale, int64, error) {
	return s.agentRepo.ListSales(filter)
}

// generateUniqueAgentCode 生成带商品/用户前缀的唯一推广码，冲突重试
func (s *AgentService) generateUniqueAgentCode(productID, userID uint) (string, error) {
	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		suffix, err := randAgentCodeSuffix(agentCodeSuffixLength)
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("AG%d-%d-%s", productID, userID, suffix)
		exists, err := s.agentRepo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("agent code generation exhausted retries")
}

func randAgentCodeSuffix(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}
