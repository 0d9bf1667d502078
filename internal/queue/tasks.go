package queue

import (
	"encoding/json"

	"github.com/vendora/vendora/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSubscriptionExpireScan 订阅到期扫描任务
	TaskSubscriptionExpireScan = constants.TaskSubscriptionExpireScan
	// TaskApprovalOverdueAlert 审核逾期提醒任务
	TaskApprovalOverdueAlert = constants.TaskApprovalOverdueAlert
)

// SubscriptionExpireScanPayload 订阅到期扫描任务载荷
type SubscriptionExpireScanPayload struct {
	ScheduledAt int64 `json:"scheduled_at"`
}

// ApprovalOverdueAlertPayload 审核逾期提醒任务载荷
type ApprovalOverdueAlertPayload struct {
	ScheduledAt int64 `json:"scheduled_at"`
}

// NewSubscriptionExpireScanTask 创建订阅到期扫描任务
func NewSubscriptionExpireScanTask(payload SubscriptionExpireScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSubscriptionExpireScan, body), nil
}

// NewApprovalOverdueAlertTask 创建审核逾期提醒任务
func NewApprovalOverdueAlertTask(payload ApprovalOverdueAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskApprovalOverdueAlert, body), nil
}
