package public

import (
	"strings"

	"github.com/vendora/vendora/internal/http/handlers/shared"
	"github.com/vendora/vendora/internal/http/response"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"
	"github.com/vendora/vendora/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID *uint        `json:"product_id"`
	Quantity  int          `json:"quantity" binding:"required"`
	Price     models.Money `json:"price" binding:"required"`
}

// PaymentRequest 支付记录请求
type PaymentRequest struct {
	PaymentMethod string       `json:"payment_method" binding:"required"`
	TransactionID string       `json:"transaction_id" binding:"required"`
	Amount        models.Money `json:"amount" binding:"required"`
	CustomerRef   string       `json:"customer_ref"`
}

// FinancialRequest 财务流水请求
type FinancialRequest struct {
	Type        string       `json:"type" binding:"required"`
	Amount      models.Money `json:"amount" binding:"required"`
	Description string       `json:"description"`
}

// CreateOrderRequest 创建订单请求，user_id 为空表示游客下单
type CreateOrderRequest struct {
	UserID     *uint              `json:"user_id"`
	Items      []OrderItemRequest `json:"items" binding:"required"`
	Payments   []PaymentRequest   `json:"payments"`
	Financials []FinancialRequest `json:"financials"`
	AgentCode  string             `json:"agent_code"`
}

// CreateOrder 创建订单
//
// 携带有效推广码时在订单落库后做销售归因；无效归因不阻断下单，
// 但会记录日志。
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	input := service.CreateOrderInput{UserID: req.UserID}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	for _, payment := range req.Payments {
		input.Payments = append(input.Payments, service.PaymentInput{
			PaymentMethod: payment.PaymentMethod,
			TransactionID: payment.TransactionID,
			Amount:        payment.Amount,
			CustomerRef:   payment.CustomerRef,
		})
	}
	for _, financial := range req.Financials {
		input.Financials = append(input.Financials, service.FinancialInput{
			Type:        financial.Type,
			Amount:      financial.Amount,
			Description: financial.Description,
		})
	}

	order, err := h.OrderService.CreateOrder(input)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	if code := strings.TrimSpace(req.AgentCode); code != "" {
		if _, saleErr := h.AgentService.RecordSale(order.ID, code); saleErr != nil {
			shared.RequestLog(c).Warnw("order_agent_attribution_failed",
				"order_id", order.ID,
				"agent_code", code,
				"error", saleErr,
			)
		} else {
			order, _ = h.OrderService.GetOrder(order.ID)
		}
	}

	response.Success(c, order)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid order id")
		return
	}
	order, err := h.OrderService.GetOrder(orderID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 分页查询订单
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if userID, ok := shared.ParseUintQuery(c, "user_id"); ok {
		filter.UserID = userID
	}
	orders, total, err := h.OrderService.ListOrders(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}
