package service

import (
	"strings"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"gorm.io/gorm"
)

// ApprovalService 审核服务
//
// 商品与商户资质文档共用同一套三态审核流。状态迁移为单语句条件
// 更新，只有待审记录能进入终态，终态不可再变，并发审核最多一人胜出。
type ApprovalService struct {
	productRepo  repository.ProductRepository
	documentRepo repository.DocumentRepository
	deadlineDays int
	now          func() time.Time
}

// NewApprovalService 创建审核服务
func NewApprovalService(productRepo repository.ProductRepository, documentRepo repository.DocumentRepository, deadlineDays int, now func() time.Time) *ApprovalService {
	if deadlineDays <= 0 {
		deadlineDays = 7
	}
	if now == nil {
		now = time.Now
	}
	return &ApprovalService{
		productRepo:  productRepo,
		documentRepo: documentRepo,
		deadlineDays: deadlineDays,
		now:          now,
	}
}

// SubmitProductInput 商品提交输入
type SubmitProductInput struct {
	Name               string
	Description        string
	Price              models.Money
	StockQuantity      int
	DiscountPercentage models.Money
	ImageURL           string
	UploadedBy         uint
}

// SubmitProduct 提交商品进入待审状态
//
// 新商品不可见，审核期限为提交时刻加配置天数。
func (s *ApprovalService) SubmitProduct(input SubmitProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" || input.UploadedBy == 0 {
		return nil, ErrNotFound
	}
	deadline := s.now().AddDate(0, 0, s.deadlineDays)
	product := &models.Product{
		Name:               input.Name,
		Description:        input.Description,
		Price:              input.Price,
		StockQuantity:      input.StockQuantity,
		DiscountPercentage: input.DiscountPercentage,
		ImageURL:           input.ImageURL,
		ApprovalStatus:     constants.ApprovalStatusPending,
		IsVisible:          false,
		UploadedBy:         input.UploadedBy,
		ApprovalDeadline:   &deadline,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	logger.Infow("product_submit_success",
		"product_id", product.ID,
		"uploaded_by", input.UploadedBy,
	)
	return product, nil
}

// ApproveProduct 审核通过商品
func (s *ApprovalService) ApproveProduct(productID, reviewerID uint) (*models.Product, error) {
	now := s.now()
	affected, err := s.productRepo.TransitionApproval(productID, constants.ApprovalStatusPending, map[string]interface{}{
		"approval_status": constants.ApprovalStatusApproved,
		"is_visible":      true,
		"approved_by":     reviewerID,
		"approved_at":     now,
		"updated_at":      now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.productTransitionConflict(productID)
	}
	logger.Infow("product_approve_success",
		"product_id", productID,
		"reviewer_id", reviewerID,
	)
	return s.productRepo.GetByID(productID)
}

// RejectProduct 驳回商品，理由必填
func (s *ApprovalService) RejectProduct(productID, reviewerID uint, reason string) (*models.Product, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}
	now := s.now()
	affected, err := s.productRepo.TransitionApproval(productID, constants.ApprovalStatusPending, map[string]interface{}{
		"approval_status":  constants.ApprovalStatusRejected,
		"is_visible":       false,
		"approved_by":      reviewerID,
		"approved_at":      now,
		"rejection_reason": reason,
		"updated_at":       now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.productTransitionConflict(productID)
	}
	logger.Infow("product_reject_success",
		"product_id", productID,
		"reviewer_id", reviewerID,
	)
	return s.productRepo.GetByID(productID)
}

func (s *ApprovalService) productTransitionConflict(productID uint) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	return ErrAlreadyProcessed
}

// SubmitDocumentInput 资质文档提交输入
type SubmitDocumentInput struct {
	MerchantID   uint
	ProductID    *uint
	DocumentType string
	FileURL      string
}

// SubmitDocument 提交商户资质文档进入待审状态
func (s *ApprovalService) SubmitDocument(input SubmitDocumentInput) (*models.BusinessDocument, error) {
	if input.MerchantID == 0 || strings.TrimSpace(input.FileURL) == "" {
		return nil, ErrNotFound
	}
	now := s.now()
	deadline := now.AddDate(0, 0, s.deadlineDays)
	doc := &models.BusinessDocument{
		MerchantID:       input.MerchantID,
		ProductID:        input.ProductID,
		DocumentType:     input.DocumentType,
		FileURL:          input.FileURL,
		ApprovalStatus:   constants.ApprovalStatusPending,
		UploadedAt:       now,
		ApprovalDeadline: &deadline,
	}
	if err := s.documentRepo.Create(doc); err != nil {
		return nil, err
	}
	logger.Infow("document_submit_success",
		"document_id", doc.ID,
		"merchant_id", input.MerchantID,
	)
	return doc, nil
}

// ApproveDocument 审核通过资质文档
//
// 文档关联商品时在同一事务内级联放行该商品，级联只作用于仍在待审的商品。
func (s *ApprovalService) ApproveDocument(documentID, reviewerID uint) (*models.BusinessDocument, error) {
	now := s.now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		documentRepo := s.documentRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		affected, err := documentRepo.TransitionApproval(documentID, constants.ApprovalStatusPending, map[string]interface{}{
			"approval_status": constants.ApprovalStatusApproved,
			"approved_by":     reviewerID,
			"approved_at":     now,
			"updated_at":      now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.documentTransitionConflict(documentRepo, documentID)
		}

		doc, err := documentRepo.GetByID(documentID)
		if err != nil {
			return err
		}
		if doc != nil && doc.ProductID != nil {
			if _, err := productRepo.TransitionApproval(*doc.ProductID, constants.ApprovalStatusPending, map[string]interface{}{
				"approval_status": constants.ApprovalStatusApproved,
				"is_visible":      true,
				"approved_by":     reviewerID,
				"approved_at":     now,
				"updated_at":      now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("document_approve_success",
		"document_id", documentID,
		"reviewer_id", reviewerID,
	)
	return s.documentRepo.GetByID(documentID)
}

// RejectDocument 驳回资质文档，理由必填
//
// 关联商品仍在待审时同样级联驳回，沿用同一驳回理由。
func (s *ApprovalService) RejectDocument(documentID, reviewerID uint, reason string) (*models.BusinessDocument, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}
	now := s.now()
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		documentRepo := s.documentRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		affected, err := documentRepo.TransitionApproval(documentID, constants.ApprovalStatusPending, map[string]interface{}{
			"approval_status":  constants.ApprovalStatusRejected,
			"approved_by":      reviewerID,
			"approved_at":      now,
			"rejection_reason": reason,
			"updated_at":       now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.documentTransitionConflict(documentRepo, documentID)
		}

		doc, err := documentRepo.GetByID(documentID)
		if err != nil {
			return err
		}
		if doc != nil && doc.ProductID != nil {
			if _, err := productRepo.TransitionApproval(*doc.ProductID, constants.ApprovalStatusPending, map[string]interface{}{
				"approval_status":  constants.ApprovalStatusRejected,
				"is_visible":       false,
				"approved_by":      reviewerID,
				"approved_at":      now,
				"rejection_reason": reason,
				"updated_at":       now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("document_reject_success",
		"document_id", documentID,
		"reviewer_id", reviewerID,
	)
	return s.documentRepo.GetByID(documentID)
}

func (s *ApprovalService) documentTransitionConflict(repo repository.DocumentRepository, documentID uint) error {
	doc, err := repo.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	return ErrAlreadyProcessed
}

// GetProduct 获取商品
func (s *ApprovalService) GetProduct(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListProducts 分页查询商品
func (s *ApprovalService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// GetDocument 获取资质文档
func (s *ApprovalService) GetDocument(id uint) (*models.BusinessDocument, error) {
	doc, err := s.documentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

// ListDocuments 分页查询资质文档
func (s *ApprovalService) ListDocuments(filter repository.DocumentListFilter) ([]models.BusinessDocument, int64, error) {
	return s.documentRepo.List(filter)
}

// ListOverdueProducts 查询超出审核期限仍待审的商品
func (s *ApprovalService) ListOverdueProducts() ([]models.Product, error) {
	return s.productRepo.ListOverdue(s.now().AddDate(0, 0, -s.deadlineDays))
}

// ListOverdueDocuments 查询超出审核期限仍待审的资质文档
func (s *ApprovalService) ListOverdueDocuments() ([]models.BusinessDocument, error) {
	return s.documentRepo.ListOverdue(s.now().AddDate(0, 0, -s.deadlineDays))
}
