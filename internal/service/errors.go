package service

import "errors"

// 服务层业务错误，由 HTTP 层统一映射为响应码
var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("operation not allowed")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidOrderInput  = errors.New("invalid order input")
	ErrOrderCreateFailed  = errors.New("order create failed")
	ErrInvalidOrderStatus = errors.New("invalid order status")

	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	ErrAlreadyProcessed     = errors.New("approval already processed")
	ErrRejectReasonRequired = errors.New("rejection reason required")

	ErrAgentPendingReview        = errors.New("agent application pending review")
	ErrAlreadyAgent              = errors.New("already an approved agent")
	ErrAgentPreviouslyRejected   = errors.New("agent application previously rejected")
	ErrProductRejected           = errors.New("product rejected")
	ErrInvalidAgent              = errors.New("agent not found or not approved")
	ErrSaleAlreadyRecorded       = errors.New("sale already recorded for order")
	ErrInvalidPayoutInput        = errors.New("invalid payout input")
	ErrExceedsApprovedCommission = errors.New("payout exceeds approved commission")
	ErrInsufficientCommission    = errors.New("insufficient pending commission")

	ErrSubscriptionNotActive = errors.New("subscription not active")
)
