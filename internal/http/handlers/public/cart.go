package public

import (
	"strconv"

	"github.com/vendora/vendora/internal/http/handlers/shared"
	"github.com/vendora/vendora/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	UserID    uint `json:"user_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest 调整购物车行请求
type UpdateCartItemRequest struct {
	UserID   uint `json:"user_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	item, err := h.CartService.AddToCart(req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdateCartItem 调整购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	itemID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid cart item id")
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	item, err := h.CartService.UpdateQuantity(req.UserID, itemID, req.Quantity)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// RemoveCartItem 移除购物车行
//
// restock=false 用于下单后清理：库存已计入订单，不再回补。
func (h *Handler) RemoveCartItem(c *gin.Context) {
	itemID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid cart item id")
		return
	}
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.BadRequest(c, "invalid user id")
		return
	}
	restock := c.DefaultQuery("restock", "true") != "false"
	if err := h.CartService.Remove(uint(userID), itemID, restock); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.BadRequest(c, "invalid user id")
		return
	}
	restock := c.DefaultQuery("restock", "true") != "false"
	if err := h.CartService.Clear(uint(userID), restock); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetCart 获取购物车及汇总金额
func (h *Handler) GetCart(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.BadRequest(c, "invalid user id")
		return
	}
	summary, listErr := h.CartService.GetCart(uint(userID))
	if listErr != nil {
		shared.RespondServiceError(c, listErr)
		return
	}
	response.Success(c, summary)
}
