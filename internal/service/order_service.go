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

// OrderService 订单服务
//
// 订单、订单项、支付与财务流水在同一事务内装配，
// 任一子记录写入失败则整单回滚，不产生半成品订单。
type OrderService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	now         func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, now func() time.Time) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{orderRepo: orderRepo, paymentRepo: paymentRepo, now: now}
}

// OrderItemInput 订单项输入，Price 为下单时单价快照
type OrderItemInput struct {
	ProductID *uint
	Quantity  int
	Price     models.Money
}

// PaymentInput 支付记录输入
type PaymentInput struct {
	PaymentMethod string
	TransactionID string
	Amount        models.Money
	CustomerRef   string
}

// FinancialInput 财务流水输入
type FinancialInput struct {
	Type        string
	Amount      models.Money
	Description string
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID     *uint
	Items      []OrderItemInput
	Payments   []PaymentInput
	Financials []FinancialInput
}

var validOrderStatuses = map[string]bool{
	constants.OrderStatusPending:    true,
	constants.OrderStatusProcessing: true,
	constants.OrderStatusShipped:    true,
	constants.OrderStatusDelivered:  true,
	constants.OrderStatusCancelled:  true,
}

var validFinancialTypes = map[string]bool{
	constants.FinancialTypeIncome:   true,
	constants.FinancialTypeExpense:  true,
	constants.FinancialTypeRefund:   true,
	constants.FinancialTypeTax:      true,
	constants.FinancialTypeShipping: true,
}

// CreateOrder 原子化创建订单及其全部子记录
//
// 订单总额由订单项重算，不信任调用方给出的汇总值。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrInvalidOrderInput
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		lineTotal := in.Price.Decimal.Mul(decimal.NewFromInt(int64(in.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     in.Price,
		})
	}

	payments := make([]models.Payment, 0, len(input.Payments))
	for _, in := range input.Payments {
		if strings.TrimSpace(in.TransactionID) == "" || strings.TrimSpace(in.PaymentMethod) == "" {
			return nil, ErrInvalidOrderInput
		}
		payments = append(payments, models.Payment{
			UserID:        input.UserID,
			PaymentMethod: in.PaymentMethod,
			TransactionID: in.TransactionID,
			Status:        constants.PaymentStatusPending,
			Amount:        in.Amount,
			CustomerRef:   in.CustomerRef,
		})
	}

	financials := make([]models.Financial, 0, len(input.Financials))
	for _, in := range input.Financials {
		if !validFinancialTypes[in.Type] {
			return nil, ErrInvalidOrderInput
		}
		financials = append(financials, models.Financial{
			Type:        in.Type,
			Amount:      in.Amount,
			Description: in.Description,
		})
	}

	order := &models.Order{
		OrderNo:    generateOrderNo(s.now()),
		UserID:     input.UserID,
		Status:     constants.OrderStatusPending,
		TotalPrice: models.NewMoneyFromDecimal(total),
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items, payments, financials)
	})
	if err != nil {
		logger.Errorw("order_create_failed",
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, ErrOrderCreateFailed
	}

	logger.Infow("order_create_success",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"total_price", order.TotalPrice.String(),
		"item_count", len(items),
	)
	return s.orderRepo.GetByID(order.ID)
}

// GetOrder 获取订单详情（含子记录）
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListOrders 分页查询订单
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// UpdateOrderInput 订单稀疏更新输入，nil 字段不参与更新
type UpdateOrderInput struct {
	Status     *string
	TotalPrice *models.Money
}

// UpdateOrder 稀疏更新订单
//
// 只写入调用方明确给出的字段，updated_at 无条件刷新。
func (s *OrderService) UpdateOrder(id uint, input UpdateOrderInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	updates := map[string]interface{}{
		"updated_at": s.now(),
	}
	if input.Status != nil {
		if !validOrderStatuses[*input.Status] {
			return nil, ErrInvalidOrderStatus
		}
		updates["status"] = *input.Status
	}
	if input.TotalPrice != nil {
		updates["total_price"] = *input.TotalPrice
	}

	if err := s.orderRepo.Updates(id, updates); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(id)
}

// UpdateOrderStatus 更新订单状态
func (s *OrderService) UpdateOrderStatus(id uint, status string) (*models.Order, error) {
	if !validOrderStatuses[status] {
		return nil, ErrInvalidOrderStatus
	}
	return s.UpdateOrder(id, UpdateOrderInput{Status: &status})
}

// AddOrderItem 追加订单项并重算订单总额
func (s *OrderService) AddOrderItem(orderID uint, input OrderItemInput) (*models.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item *models.OrderItem
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)

		order, err := repo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrNotFound
		}

		item = &models.OrderItem{
			OrderID:   orderID,
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			Price:     input.Price,
		}
		if err := repo.CreateItem(item); err != nil {
			return err
		}
		return s.recomputeTotal(repo, orderID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateOrderItemQuantity 调整订单项数量并重算订单总额
//
// 单价快照不可变，只允许调整数量。
func (s *OrderService) UpdateOrderItemQuantity(itemID uint, quantity int) (*models.OrderItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item *models.OrderItem
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)

		existing, err := repo.GetItemByID(itemID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}

		if err := repo.UpdateItem(itemID, map[string]interface{}{
			"quantity":   quantity,
			"updated_at": s.now(),
		}); err != nil {
			return err
		}
		if err := s.recomputeTotal(repo, existing.OrderID); err != nil {
			return err
		}
		item, err = repo.GetItemByID(itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteOrderItem 删除订单项并重算订单总额
func (s *OrderService) DeleteOrderItem(itemID uint) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)

		existing, err := repo.GetItemByID(itemID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}

		if err := repo.DeleteItem(itemID); err != nil {
			return err
		}
		return s.recomputeTotal(repo, existing.OrderID)
	})
}

// RecomputeTotal 按订单项重算订单总额
func (s *OrderService) RecomputeTotal(orderID uint) (*models.Order, error) {
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.recomputeTotal(s.orderRepo.WithTx(tx), orderID)
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

func (s *OrderService) recomputeTotal(repo repository.OrderRepository, orderID uint) error {
	items, err := repo.ListItems(orderID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Price.Decimal.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
	}
	return repo.Updates(orderID, map[string]interface{}{
		"total_price": models.NewMoneyFromDecimal(total),
		"updated_at":  s.now(),
	})
}

func generateOrderNo(now time.Time) string {
	return fmt.Sprintf("VD%s%s", now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
