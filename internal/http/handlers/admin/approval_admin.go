package admin

import (
	"strings"

	"github.com/vendora/vendora/internal/http/handlers/shared"
	"github.com/vendora/vendora/internal/http/response"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"
	"github.com/vendora/vendora/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitProductRequest 商品提交请求
type SubmitProductRequest struct {
	Name               string       `json:"name" binding:"required"`
	Description        string       `json:"description"`
	Price              models.Money `json:"price" binding:"required"`
	StockQuantity      int          `json:"stock_quantity"`
	DiscountPercentage models.Money `json:"discount_percentage"`
	ImageURL           string       `json:"image_url"`
	UploadedBy         uint         `json:"uploaded_by" binding:"required"`
}

// ReviewRequest 审核请求
type ReviewRequest struct {
	ReviewerID uint   `json:"reviewer_id" binding:"required"`
	Reason     string `json:"reason"`
}

// SubmitDocumentRequest 资质文档提交请求
type SubmitDocumentRequest struct {
	MerchantID   uint   `json:"merchant_id" binding:"required"`
	ProductID    *uint  `json:"product_id"`
	DocumentType string `json:"document_type"`
	FileURL      string `json:"file_url" binding:"required"`
}

// SubmitProduct 提交商品待审
func (h *Handler) SubmitProduct(c *gin.Context) {
	var req SubmitProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	product, err := h.ApprovalService.SubmitProduct(service.SubmitProductInput{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		StockQuantity:      req.StockQuantity,
		DiscountPercentage: req.DiscountPercentage,
		ImageURL:           req.ImageURL,
		UploadedBy:         req.UploadedBy,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// ApproveProduct 审核通过商品
func (h *Handler) ApproveProduct(c *gin.Context) {
	productID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid product id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	product, err := h.ApprovalService.ApproveProduct(productID, req.ReviewerID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// RejectProduct 驳回商品
func (h *Handler) RejectProduct(c *gin.Context) {
	productID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid product id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	product, err := h.ApprovalService.RejectProduct(productID, req.ReviewerID, req.Reason)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// ListProducts 分页查询商品
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	filter := repository.ProductListFilter{
		Page:           page,
		PageSize:       pageSize,
		ApprovalStatus: strings.TrimSpace(c.Query("approval_status")),
	}
	if merchantID, ok := shared.ParseUintQuery(c, "merchant_id"); ok {
		filter.MerchantID = merchantID
	}
	products, total, err := h.ApprovalService.ListProducts(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// SubmitDocument 提交资质文档待审
func (h *Handler) SubmitDocument(c *gin.Context) {
	var req SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	doc, err := h.ApprovalService.SubmitDocument(service.SubmitDocumentInput{
		MerchantID:   req.MerchantID,
		ProductID:    req.ProductID,
		DocumentType: req.DocumentType,
		FileURL:      req.FileURL,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, doc)
}

// ApproveDocument 审核通过资质文档
func (h *Handler) ApproveDocument(c *gin.Context) {
	documentID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	doc, err := h.ApprovalService.ApproveDocument(documentID, req.ReviewerID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, doc)
}

// RejectDocument 驳回资质文档
func (h *Handler) RejectDocument(c *gin.Context) {
	documentID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	doc, err := h.ApprovalService.RejectDocument(documentID, req.ReviewerID, req.Reason)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, doc)
}

// ListOverdueApprovals 查询逾期未审的商品与文档
func (h *Handler) ListOverdueApprovals(c *gin.Context) {
	products, err := h.ApprovalService.ListOverdueProducts()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	docs, err := h.ApprovalService.ListOverdueDocuments()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"products":  products,
		"documents": docs,
	})
}
