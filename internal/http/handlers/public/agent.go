package public

import (
	"github.com/vendora/vendora/internal/http/handlers/shared"
	"github.com/vendora/vendora/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AgentApplyRequest 代理申请请求
type AgentApplyRequest struct {
	UserID    uint `json:"user_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
}

// ApplyAsAgent 申请成为商品推广代理
func (h *Handler) ApplyAsAgent(c *gin.Context) {
	var req AgentApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	agent, err := h.AgentService.Apply(req.ProductID, req.UserID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}

// GetAgent 获取代理档案
func (h *Handler) GetAgent(c *gin.Context) {
	agentID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid agent id")
		return
	}
	agent, err := h.AgentService.GetAgent(agentID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, agent)
}
