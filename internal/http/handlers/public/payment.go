package public

import (
	"github.com/vendora/vendora/internal/http/handlers/shared"
	"github.com/vendora/vendora/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PaymentCallbackRequest 支付回调请求
type PaymentCallbackRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status" binding:"required"`
}

// PaymentCallback 支付结果回调
//
// 同一交易号重复回调同一状态是幂等成功。
func (h *Handler) PaymentCallback(c *gin.Context) {
	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	payment, err := h.PaymentService.UpdateStatus(req.TransactionID, req.Status)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}

// GetPayment 按交易号查询支付记录
func (h *Handler) GetPayment(c *gin.Context) {
	transactionID := c.Param("transaction_id")
	payment, err := h.PaymentService.GetByTransactionID(transactionID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, payment)
}
