package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var paymentTestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *OrderService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.Payment{}, &models.Financial{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	now := func() time.Time { return paymentTestNow }
	return NewPaymentService(paymentRepo, orderRepo, now), NewOrderService(orderRepo, paymentRepo, now), db
}

func createPendingOrderWithPayment(t *testing.T, orderSvc *OrderService, transactionID string) *models.Order {
	t.Helper()
	order, err := orderSvc.CreateOrder(CreateOrderInput{
		Items:    []OrderItemInput{{Quantity: 1, Price: mustMoney(t, "25.00")}},
		Payments: []PaymentInput{{PaymentMethod: "card", TransactionID: transactionID, Amount: mustMoney(t, "25.00")}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestUpdateStatusCompletedCascadesToProcessing(t *testing.T) {
	paymentSvc, orderSvc, db := setupPaymentServiceTest(t)
	order := createPendingOrderWithPayment(t, orderSvc, "tx-complete")

	payment, err := paymentSvc.UpdateStatus("tx-complete", constants.PaymentStatusCompleted)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusCompleted {
		t.Fatalf("expected Completed, got %s", payment.Status)
	}
	if payment.PaidAt == nil || !payment.PaidAt.Equal(paymentTestNow) {
		t.Fatalf("expected paid_at stamped %v, got %v", paymentTestNow, payment.PaidAt)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusProcessing {
		t.Fatalf("expected order Processing, got %s", reloaded.Status)
	}
}

func TestUpdateStatusFailedCancelsOrder(t *testing.T) {
	paymentSvc, orderSvc, db := setupPaymentServiceTest(t)
	order := createPendingOrderWithPayment(t, orderSvc, "tx-fail")

	payment, err := paymentSvc.UpdateStatus("tx-fail", constants.PaymentStatusFailed)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if payment.Status != constants.PaymentStatusFailed {
		t.Fatalf("expected Failed, got %s", payment.Status)
	}
	if payment.PaidAt != nil {
		t.Fatalf("failed payment must not carry paid_at")
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected order Cancelled, got %s", reloaded.Status)
	}
}

func TestUpdateStatusIdempotentOnRepeat(t *testing.T) {
	paymentSvc, orderSvc, db := setupPaymentServiceTest(t)
	order := createPendingOrderWithPayment(t, orderSvc, "tx-repeat")

	if _, err := paymentSvc.UpdateStatus("tx-repeat", constants.PaymentStatusCompleted); err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	payment, err := paymentSvc.UpdateStatus("tx-repeat", constants.PaymentStatusCompleted)
	if err != nil {
		t.Fatalf("repeated callback must be idempotent, got %v", err)
	}
	if payment.Status != constants.PaymentStatusCompleted {
		t.Fatalf("expected Completed, got %s", payment.Status)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusProcessing {
		t.Fatalf("expected order still Processing, got %s", reloaded.Status)
	}
}

func TestUpdateStatusRejectsTerminalFlip(t *testing.T) {
	paymentSvc, orderSvc, _ := setupPaymentServiceTest(t)
	createPendingOrderWithPayment(t, orderSvc, "tx-flip")

	if _, err := paymentSvc.UpdateStatus("tx-flip", constants.PaymentStatusCompleted); err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	if _, err := paymentSvc.UpdateStatus("tx-flip", constants.PaymentStatusFailed); !errors.Is(err, ErrInvalidPaymentStatus) {
		t.Fatalf("expected ErrInvalidPaymentStatus on terminal flip, got %v", err)
	}
}

func TestUpdateStatusUnknownTransaction(t *testing.T) {
	paymentSvc, _, _ := setupPaymentServiceTest(t)

	if _, err := paymentSvc.UpdateStatus("tx-missing", constants.PaymentStatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := paymentSvc.UpdateStatus("tx-missing", "Refunded"); !errors.Is(err, ErrInvalidPaymentStatus) {
		t.Fatalf("expected ErrInvalidPaymentStatus for unknown status, got %v", err)
	}
}
