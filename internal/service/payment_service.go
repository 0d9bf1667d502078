package service

import (
	"strings"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"gorm.io/gorm"
)

// PaymentService 支付服务
//
// 支付结果驱动订单状态单向级联：成功则订单进入处理中，
// 失败则订单取消。级联只发生在订单仍处于待支付时。
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	now         func() time.Time
}

// NewPaymentService 创建支付服务
func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository, now func() time.Time) *PaymentService {
	if now == nil {
		now = time.Now
	}
	return &PaymentService{paymentRepo: paymentRepo, orderRepo: orderRepo, now: now}
}

// GetByTransactionID 根据交易号获取支付记录
func (s *PaymentService) GetByTransactionID(transactionID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByTransactionID(transactionID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrNotFound
	}
	return payment, nil
}

// UpdateStatus 按交易号更新支付状态并级联订单
//
// 重复回调同一终态是幂等成功；已终态后再收到不同状态则报错。
func (s *PaymentService) UpdateStatus(transactionID, status string) (*models.Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrNotFound
	}
	if status != constants.PaymentStatusCompleted && status != constants.PaymentStatusFailed {
		return nil, ErrInvalidPaymentStatus
	}

	var payment *models.Payment
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		existing, err := paymentRepo.GetByTransactionIDForUpdate(transactionID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		if existing.Status == status {
			payment = existing
			logger.Infow("payment_status_idempotent",
				"transaction_id", transactionID,
				"status", status,
			)
			return nil
		}
		if existing.Status != constants.PaymentStatusPending {
			return ErrInvalidPaymentStatus
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":     status,
			"updated_at": now,
		}
		if status == constants.PaymentStatusCompleted {
			updates["paid_at"] = now
		}
		if err := paymentRepo.Updates(existing.ID, updates); err != nil {
			return err
		}

		order, err := orderRepo.GetByID(existing.OrderID)
		if err != nil {
			return err
		}
		if order != nil && order.Status == constants.OrderStatusPending {
			nextStatus := constants.OrderStatusProcessing
			if status == constants.PaymentStatusFailed {
				nextStatus = constants.OrderStatusCancelled
			}
			if err := orderRepo.Updates(order.ID, map[string]interface{}{
				"status":     nextStatus,
				"updated_at": now,
			}); err != nil {
				return err
			}
		}

		payment, err = paymentRepo.GetByID(existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payment_status_update_success",
		"transaction_id", transactionID,
		"status", status,
		"order_id", payment.OrderID,
	)
	return payment, nil
}
