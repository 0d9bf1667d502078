package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var agentTestNow = time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

func setupAgentServiceTest(t *testing.T) (*AgentService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:agent_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{}, &models.ProductAgent{}, &models.AgentSale{}, &models.AgentPayout{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{}, &models.Financial{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	agentRepo := repository.NewAgentRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	now := func() time.Time { return agentTestNow }
	return NewAgentService(agentRepo, productRepo, orderRepo, 5.0, now), db
}

func createAgentTestProduct(t *testing.T, db *gorm.DB, approvalStatus string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:           "推广商品",
		Price:          mustMoney(t, "100.00"),
		StockQuantity:  50,
		ApprovalStatus: approvalStatus,
		IsVisible:      approvalStatus == constants.ApprovalStatusApproved,
		UploadedBy:     1,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createAgentTestOrder(t *testing.T, db *gorm.DB, total string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:    fmt.Sprintf("VD-test-%d", time.Now().UnixNano()),
		Status:     constants.OrderStatusPending,
		TotalPrice: mustMoney(t, total),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func approveTestAgent(t *testing.T, svc *AgentService, db *gorm.DB, productID, userID uint) *models.ProductAgent {
	t.Helper()
	applied, err := svc.Apply(productID, userID)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	agent, err := svc.ApproveAgent(applied.ID, 9, nil)
	if err != nil {
		t.Fatalf("approve agent failed: %v", err)
	}
	return agent
}

func TestApplyGatesOnLatestApplication(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)

	if _, err := svc.Apply(4242, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing product, got %v", err)
	}

	rejected := createAgentTestProduct(t, db, constants.ApprovalStatusRejected)
	if _, err := svc.Apply(rejected.ID, 10); !errors.Is(err, ErrProductRejected) {
		t.Fatalf("expected ErrProductRejected, got %v", err)
	}

	applied, err := svc.Apply(product.ID, 10)
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if applied.Status != constants.AgentStatusPending {
		t.Fatalf("expected pending application, got %s", applied.Status)
	}

	if _, err := svc.Apply(product.ID, 10); !errors.Is(err, ErrAgentPendingReview) {
		t.Fatalf("expected ErrAgentPendingReview, got %v", err)
	}

	if _, err := svc.ApproveAgent(applied.ID, 9, nil); err != nil {
		t.Fatalf("approve agent failed: %v", err)
	}
	if _, err := svc.Apply(product.ID, 10); !errors.Is(err, ErrAlreadyAgent) {
		t.Fatalf("expected ErrAlreadyAgent, got %v", err)
	}
}

func TestApplyAfterRejectionCarriesReason(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)

	applied, err := svc.Apply(product.ID, 20)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.RejectAgent(applied.ID, 9, "推广资质不足"); err != nil {
		t.Fatalf("reject agent failed: %v", err)
	}

	_, err = svc.Apply(product.ID, 20)
	if !errors.Is(err, ErrAgentPreviouslyRejected) {
		t.Fatalf("expected ErrAgentPreviouslyRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "推广资质不足") {
		t.Fatalf("expected stored rejection reason in error, got %q", err.Error())
	}
}

func TestRejectAgentRequiresReason(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)

	applied, err := svc.Apply(product.ID, 30)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if _, err := svc.RejectAgent(applied.ID, 9, ""); !errors.Is(err, ErrRejectReasonRequired) {
		t.Fatalf("expected ErrRejectReasonRequired, got %v", err)
	}
}

func TestApproveAgentAssignsCodeAndDefaultRate(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)

	applied, err := svc.Apply(product.ID, 40)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	agent, err := svc.ApproveAgent(applied.ID, 9, nil)
	if err != nil {
		t.Fatalf("approve agent failed: %v", err)
	}
	if agent.Status != constants.AgentStatusApproved {
		t.Fatalf("expected approved, got %s", agent.Status)
	}
	if !agent.CommissionRate.Decimal.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("expected default rate 5, got %s", agent.CommissionRate.String())
	}
	wantPrefix := fmt.Sprintf("AG%d-%d-", product.ID, uint(40))
	if !strings.HasPrefix(agent.AgentCode, wantPrefix) {
		t.Fatalf("expected code prefix %q, got %q", wantPrefix, agent.AgentCode)
	}
	if got := len(agent.AgentCode) - len(wantPrefix); got != agentCodeSuffixLength {
		t.Fatalf("expected %d char suffix, got %d", agentCodeSuffixLength, got)
	}

	if _, err := svc.ApproveAgent(applied.ID, 9, nil); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed on second approve, got %v", err)
	}
}

func TestApproveAgentHonorsExplicitRate(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)

	applied, err := svc.Apply(product.ID, 41)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	rate := decimal.RequireFromString("7.5")
	agent, err := svc.ApproveAgent(applied.ID, 9, &rate)
	if err != nil {
		t.Fatalf("approve agent failed: %v", err)
	}
	if !agent.CommissionRate.Decimal.Equal(rate) {
		t.Fatalf("expected rate 7.5, got %s", agent.CommissionRate.String())
	}
}

func TestRecordSaleFreezesRateAndStampsOrder(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)
	agent := approveTestAgent(t, svc, db, product.ID, 50)
	order := createAgentTestOrder(t, db, "200.00")

	sale, err := svc.RecordSale(order.ID, agent.AgentCode)
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if !sale.CommissionAmount.Decimal.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected commission 10.00 at rate 5%%, got %s", sale.CommissionAmount.String())
	}
	if sale.CommissionStatus != constants.CommissionStatusPending {
		t.Fatalf("expected pending commission, got %s", sale.CommissionStatus)
	}
	if !sale.SaleDate.Equal(agentTestNow) {
		t.Fatalf("expected sale_date %v, got %v", agentTestNow, sale.SaleDate)
	}

	var reloadedAgent models.ProductAgent
	if err := db.First(&reloadedAgent, agent.ID).Error; err != nil {
		t.Fatalf("reload agent failed: %v", err)
	}
	if !reloadedAgent.TotalSalesValue.Decimal.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("expected total sales 200, got %s", reloadedAgent.TotalSalesValue.String())
	}
	if !reloadedAgent.PendingCommission.Decimal.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected pending commission 10, got %s", reloadedAgent.PendingCommission.String())
	}
	if reloadedAgent.TotalOrdersReferred != 1 {
		t.Fatalf("expected 1 referred order, got %d", reloadedAgent.TotalOrdersReferred)
	}

	var reloadedOrder models.Order
	if err := db.First(&reloadedOrder, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloadedOrder.ReferredByAgentID == nil || *reloadedOrder.ReferredByAgentID != agent.ID {
		t.Fatalf("expected order stamped with agent %d, got %v", agent.ID, reloadedOrder.ReferredByAgentID)
	}
	if reloadedOrder.AgentCodeUsed != agent.AgentCode {
		t.Fatalf("expected agent_code_used %q, got %q", agent.AgentCode, reloadedOrder.AgentCodeUsed)
	}

	// 归因后调整代理比例不影响已冻结的快照
	if err := db.Model(&models.ProductAgent{}).Where("id = ?", agent.ID).
		Update("commission_rate", mustMoney(t, "20.00")).Error; err != nil {
		t.Fatalf("bump rate failed: %v", err)
	}
	var reloadedSale models.AgentSale
	if err := db.First(&reloadedSale, sale.ID).Error; err != nil {
		t.Fatalf("reload sale failed: %v", err)
	}
	if !reloadedSale.CommissionRate.Decimal.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("frozen rate must stay 5, got %s", reloadedSale.CommissionRate.String())
	}
}

func TestRecordSaleRejectsDuplicateAndBadCode(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)
	agent := approveTestAgent(t, svc, db, product.ID, 60)
	order := createAgentTestOrder(t, db, "80.00")

	if _, err := svc.RecordSale(order.ID, "AG-no-such-code"); !errors.Is(err, ErrInvalidAgent) {
		t.Fatalf("expected ErrInvalidAgent, got %v", err)
	}

	if _, err := svc.RecordSale(order.ID, agent.AgentCode); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if _, err := svc.RecordSale(order.ID, agent.AgentCode); !errors.Is(err, ErrSaleAlreadyRecorded) {
		t.Fatalf("expected ErrSaleAlreadyRecorded, got %v", err)
	}

	var count int64
	if err := db.Model(&models.AgentSale{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count sales failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one sale row, got %d", count)
	}
}

func TestApproveSaleIsTerminal(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)
	agent := approveTestAgent(t, svc, db, product.ID, 70)
	order := createAgentTestOrder(t, db, "100.00")

	sale, err := svc.RecordSale(order.ID, agent.AgentCode)
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	approved, err := svc.ApproveSale(sale.ID, 9)
	if err != nil {
		t.Fatalf("approve sale failed: %v", err)
	}
	if approved.CommissionStatus != constants.CommissionStatusApproved {
		t.Fatalf("expected approved commission, got %s", approved.CommissionStatus)
	}
	if _, err := svc.ApproveSale(sale.ID, 9); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if _, err := svc.ApproveSale(4242, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePayoutGuardsApprovedSum(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)
	agent := approveTestAgent(t, svc, db, product.ID, 80)
	order := createAgentTestOrder(t, db, "200.00")

	sale, err := svc.RecordSale(order.ID, agent.AgentCode)
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	from := agentTestNow.AddDate(0, 0, -1)
	to := agentTestNow.AddDate(0, 0, 1)

	// 佣金仍待审时不可结算
	if _, err := svc.CreatePayout(agent.ID, 9, mustMoney(t, "5.00"), from, to); !errors.Is(err, ErrExceedsApprovedCommission) {
		t.Fatalf("expected ErrExceedsApprovedCommission for unapproved sale, got %v", err)
	}

	if _, err := svc.ApproveSale(sale.ID, 9); err != nil {
		t.Fatalf("approve sale failed: %v", err)
	}
	if _, err := svc.CreatePayout(agent.ID, 9, mustMoney(t, "15.00"), from, to); !errors.Is(err, ErrExceedsApprovedCommission) {
		t.Fatalf("expected ErrExceedsApprovedCommission over approved sum, got %v", err)
	}

	if _, err := svc.CreatePayout(agent.ID, 9, mustMoney(t, "-1.00"), from, to); !errors.Is(err, ErrInvalidPayoutInput) {
		t.Fatalf("expected ErrInvalidPayoutInput for negative amount, got %v", err)
	}
	if _, err := svc.CreatePayout(agent.ID, 9, mustMoney(t, "5.00"), to, from); !errors.Is(err, ErrInvalidPayoutInput) {
		t.Fatalf("expected ErrInvalidPayoutInput for inverted window, got %v", err)
	}
}

func TestPayoutBindsSalesAndSettlesExactly(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)
	agent := approveTestAgent(t, svc, db, product.ID, 90)
	order := createAgentTestOrder(t, db, "200.00")

	sale, err := svc.RecordSale(order.ID, agent.AgentCode)
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if _, err := svc.ApproveSale(sale.ID, 9); err != nil {
		t.Fatalf("approve sale failed: %v", err)
	}

	from := agentTestNow.AddDate(0, 0, -1)
	to := agentTestNow.AddDate(0, 0, 1)
	payout, err := svc.CreatePayout(agent.ID, 9, mustMoney(t, "10.00"), from, to)
	if err != nil {
		t.Fatalf("create payout failed: %v", err)
	}
	if payout.Status != constants.PayoutStatusPending {
		t.Fatalf("expected pending payout, got %s", payout.Status)
	}
	if payout.SalesCount != 1 {
		t.Fatalf("expected 1 covered sale, got %d", payout.SalesCount)
	}

	var boundSale models.AgentSale
	if err := db.First(&boundSale, sale.ID).Error; err != nil {
		t.Fatalf("reload sale failed: %v", err)
	}
	if boundSale.PayoutID == nil || *boundSale.PayoutID != payout.ID {
		t.Fatalf("expected sale bound to payout %d, got %v", payout.ID, boundSale.PayoutID)
	}

	// 重叠时间窗不能重复占用已绑定的佣金
	if _, err := svc.CreatePayout(agent.ID, 9, mustMoney(t, "0.01"), from, to); !errors.Is(err, ErrExceedsApprovedCommission) {
		t.Fatalf("expected ErrExceedsApprovedCommission for overlapping window, got %v", err)
	}

	completed, err := svc.CompletePayout(payout.ID, 9)
	if err != nil {
		t.Fatalf("complete payout failed: %v", err)
	}
	if completed.Status != constants.PayoutStatusCompleted {
		t.Fatalf("expected completed payout, got %s", completed.Status)
	}
	if completed.PaidAt == nil || !completed.PaidAt.Equal(agentTestNow) {
		t.Fatalf("expected paid_at %v, got %v", agentTestNow, completed.PaidAt)
	}

	var settledAgent models.ProductAgent
	if err := db.First(&settledAgent, agent.ID).Error; err != nil {
		t.Fatalf("reload agent failed: %v", err)
	}
	if !settledAgent.PendingCommission.Decimal.Equal(decimal.Zero) {
		t.Fatalf("expected pending commission drained to 0, got %s", settledAgent.PendingCommission.String())
	}
	if !settledAgent.PaidCommission.Decimal.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected paid commission 10, got %s", settledAgent.PaidCommission.String())
	}

	var paidSale models.AgentSale
	if err := db.First(&paidSale, sale.ID).Error; err != nil {
		t.Fatalf("reload sale failed: %v", err)
	}
	if paidSale.CommissionStatus != constants.CommissionStatusPaid {
		t.Fatalf("expected paid commission status, got %s", paidSale.CommissionStatus)
	}
	if paidSale.CommissionPaidAt == nil || !paidSale.CommissionPaidAt.Equal(agentTestNow) {
		t.Fatalf("expected commission_paid_at %v, got %v", agentTestNow, paidSale.CommissionPaidAt)
	}

	if _, err := svc.CompletePayout(payout.ID, 9); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed on repeat completion, got %v", err)
	}
}

func TestCompletePayoutInsufficientCommission(t *testing.T) {
	svc, db := setupAgentServiceTest(t)
	product := createAgentTestProduct(t, db, constants.ApprovalStatusApproved)
	agent := approveTestAgent(t, svc, db, product.ID, 95)
	order := createAgentTestOrder(t, db, "200.00")

	sale, err := svc.RecordSale(order.ID, agent.AgentCode)
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if _, err := svc.ApproveSale(sale.ID, 9); err != nil {
		t.Fatalf("approve sale failed: %v", err)
	}
	payout, err := svc.CreatePayout(agent.ID, 9, mustMoney(t, "10.00"),
		agentTestNow.AddDate(0, 0, -1), agentTestNow.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("create payout failed: %v", err)
	}

	if err := db.Model(&models.ProductAgent{}).Where("id = ?", agent.ID).
		Update("pending_commission", mustMoney(t, "3.00")).Error; err != nil {
		t.Fatalf("shrink pending commission failed: %v", err)
	}

	if _, err := svc.CompletePayout(payout.ID, 9); !errors.Is(err, ErrInsufficientCommission) {
		t.Fatalf("expected ErrInsufficientCommission, got %v", err)
	}

	var reloaded models.AgentPayout
	if err := db.First(&reloaded, payout.ID).Error; err != nil {
		t.Fatalf("reload payout failed: %v", err)
	}
	if reloaded.Status != constants.PayoutStatusPending {
		t.Fatalf("failed settlement must roll back payout status, got %s", reloaded.Status)
	}
}
