package admin

import (
	"strings"
	"time"

	"github.com/vendora/vendora/internal/http/handlers/shared"
	"github.com/vendora/vendora/internal/http/response"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ApproveAgentRequest 代理审核通过请求
type ApproveAgentRequest struct {
	ReviewerID     uint             `json:"reviewer_id" binding:"required"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
}

// CreatePayoutRequest 创建结算单请求
type CreatePayoutRequest struct {
	AgentID  uint         `json:"agent_id" binding:"required"`
	AdminID  uint         `json:"admin_id" binding:"required"`
	Amount   models.Money `json:"amount" binding:"required"`
	FromDate time.Time    `json:"from_date" binding:"required"`
	ToDate   time.Time    `json:"to_date" binding:"required"`
}

// ApproveAgent 审核通过代理申请
func (h *Handler) ApproveAgent(c *gin.Context) {
	agentID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid agent id")
		return
	}
	var req ApproveAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	agent, err := h.AgentService.ApproveAgent(agentID, req.ReviewerID, req.CommissionRate)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// RejectAgent 驳回代理申请
func (h *Handler) RejectAgent(c *gin.Context) {
	agentID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid agent id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	agent, err := h.AgentService.RejectAgent(agentID, req.ReviewerID, req.Reason)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// ApproveSale 审核通过销售佣金
func (h *Handler) ApproveSale(c *gin.Context) {
	saleID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid sale id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	sale, err := h.AgentService.ApproveSale(saleID, req.ReviewerID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, sale)
}

// ListSales 分页查询代理销售记录
func (h *Handler) ListSales(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.AgentSaleListFilter{
		Page:             page,
		PageSize:         pageSize,
		CommissionStatus: strings.TrimSpace(c.Query("commission_status")),
	}
	if agentID, ok := shared.ParseUintQuery(c, "agent_id"); ok {
		filter.AgentID = agentID
	}
	sales, total, err := h.AgentService.ListSales(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, sales, response.NewPagination(page, pageSize, total))
}

// CreatePayout 创建佣金结算单
func (h *Handler) CreatePayout(c *gin.Context) {
	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	payout, err := h.AgentService.CreatePayout(req.AgentID, req.AdminID, req.Amount, req.FromDate, req.ToDate)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, payout)
}

// CompletePayout 完成结算单
func (h *Handler) CompletePayout(c *gin.Context) {
	payoutID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid payout id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	payout, err := h.AgentService.CompletePayout(payoutID, req.ReviewerID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, payout)
}

// GetPayout 获取结算单
func (h *Handler) GetPayout(c *gin.Context) {
	payoutID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid payout id")
		return
	}
	payout, err := h.AgentService.GetPayout(payoutID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, payout)
}
