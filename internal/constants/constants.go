package constants

// 订单状态常量
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// 支付状态常量
const (
	PaymentStatusPending   = "Pending"
	PaymentStatusCompleted = "Completed"
	PaymentStatusFailed    = "Failed"
)

// 审核状态常量（商品与商户资质文档共用）
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// 推广代理申请状态常量
const (
	AgentStatusPending  = "pending"
	AgentStatusApproved = "approved"
	AgentStatusRejected = "rejected"
)

// 代理销售佣金状态常量
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusPaid     = "paid"
)

// 代理结算单状态常量
const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
)

// 商户订阅状态常量
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusSuspended = "suspended"
)

// 财务流水类型常量
const (
	FinancialTypeIncome   = "income"
	FinancialTypeExpense  = "expense"
	FinancialTypeRefund   = "refund"
	FinancialTypeTax      = "tax"
	FinancialTypeShipping = "shipping"
)

// 队列常量
const (
	QueueDefault = "default"

	TaskSubscriptionExpireScan = "subscription:expire_scan"
	TaskApprovalOverdueAlert   = "approval:overdue_alert"
)
