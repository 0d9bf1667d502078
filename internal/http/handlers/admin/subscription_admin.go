package admin

import (
	"strings"
	"time"

	"github.com/vendora/vendora/internal/http/handlers/shared"
	"github.com/vendora/vendora/internal/http/response"
	"github.com/vendora/vendora/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateSubscriptionRequest 创建订阅请求
type CreateSubscriptionRequest struct {
	MerchantID uint      `json:"merchant_id" binding:"required"`
	PlanName   string    `json:"plan_name"`
	PeriodEnd  time.Time `json:"period_end" binding:"required"`
}

// RenewSubscriptionRequest 续费请求
type RenewSubscriptionRequest struct {
	Amount       models.Money `json:"amount" binding:"required"`
	DurationDays int          `json:"duration_days" binding:"required"`
}

// CreateSubscription 创建商户订阅
func (h *Handler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	sub, err := h.SubscriptionService.Create(req.MerchantID, req.PlanName, req.PeriodEnd)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, sub)
}

// RenewSubscription 续费商户订阅
func (h *Handler) RenewSubscription(c *gin.Context) {
	merchantID, ok := shared.ParseUintParam(c, "merchant_id")
	if !ok {
		response.BadRequest(c, "invalid merchant id")
		return
	}
	var req RenewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DurationDays <= 0 {
		response.BadRequest(c, "invalid request body")
		return
	}
	sub, err := h.SubscriptionService.Renew(merchantID, req.Amount, time.Duration(req.DurationDays)*24*time.Hour)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, sub)
}

// ListSubscriptions 按状态分页查询订阅
func (h *Handler) ListSubscriptions(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	status := strings.TrimSpace(c.Query("status"))
	subs, total, err := h.SubscriptionService.ListByStatus(status, page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, subs, response.NewPagination(page, pageSize, total))
}

// RunExpireScan 手工触发一次订阅到期扫描
func (h *Handler) RunExpireScan(c *gin.Context) {
	affected, err := h.SubscriptionService.SuspendExpired()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"suspended_count": affected})
}
