package shared

import (
	"errors"

	"github.com/vendora/vendora/internal/http/response"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 将服务层业务错误映射为响应码。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrNotFound):
		response.Error(c, response.CodeNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Error(c, response.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyProcessed),
		errors.Is(err, service.ErrSaleAlreadyRecorded):
		response.Error(c, response.CodeConflict, err.Error())
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidOrderInput),
		errors.Is(err, service.ErrOrderCreateFailed),
		errors.Is(err, service.ErrInvalidOrderStatus),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrRejectReasonRequired),
		errors.Is(err, service.ErrAgentPendingReview),
		errors.Is(err, service.ErrAlreadyAgent),
		errors.Is(err, service.ErrAgentPreviouslyRejected),
		errors.Is(err, service.ErrProductRejected),
		errors.Is(err, service.ErrInvalidAgent),
		errors.Is(err, service.ErrInvalidPayoutInput),
		errors.Is(err, service.ErrExceedsApprovedCommission),
		errors.Is(err, service.ErrInsufficientCommission),
		errors.Is(err, service.ErrSubscriptionNotActive):
		response.Error(c, response.CodeBadRequest, err.Error())
	default:
		RequestLog(c).Errorw("handler_internal_error", "error", err)
		response.Error(c, response.CodeInternal, "internal error")
	}
}
