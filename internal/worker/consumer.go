package worker

import (
	"context"
	"encoding/json"

	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/provider"
	"github.com/vendora/vendora/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSubscriptionExpireScan, c.handleSubscriptionExpireScan)
	mux.HandleFunc(queue.TaskApprovalOverdueAlert, c.handleApprovalOverdueAlert)
}

func (c *Consumer) handleSubscriptionExpireScan(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.SubscriptionExpireScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_subscription_expire_scan_unmarshal_failed", "error", err)
		return err
	}
	if c.SubscriptionService == nil {
		logger.Warnw("worker_subscription_expire_scan_skip_service_nil")
		return nil
	}
	affected, err := c.SubscriptionService.SuspendExpired()
	if err != nil {
		return err
	}
	logger.Infow("worker_subscription_expire_scan_done", "suspended_count", affected)
	return nil
}

func (c *Consumer) handleApprovalOverdueAlert(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.ApprovalOverdueAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_approval_overdue_alert_unmarshal_failed", "error", err)
		return err
	}
	if c.ApprovalService == nil {
		logger.Warnw("worker_approval_overdue_alert_skip_service_nil")
		return nil
	}
	products, err := c.ApprovalService.ListOverdueProducts()
	if err != nil {
		return err
	}
	docs, err := c.ApprovalService.ListOverdueDocuments()
	if err != nil {
		return err
	}
	for i := range products {
		logger.Warnw("approval_overdue_product",
			"product_id", products[i].ID,
			"uploaded_by", products[i].UploadedBy,
			"created_at", products[i].CreatedAt,
		)
	}
	for i := range docs {
		logger.Warnw("approval_overdue_document",
			"document_id", docs[i].ID,
			"merchant_id", docs[i].MerchantID,
			"uploaded_at", docs[i].UploadedAt,
		)
	}
	logger.Infow("worker_approval_overdue_alert_done",
		"overdue_products", len(products),
		"overdue_documents", len(docs),
	)
	return nil
}
