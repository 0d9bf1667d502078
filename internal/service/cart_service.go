package service

import (
	"time"

	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService 购物车服务
//
// 加入购物车即锁定库存：库存扣减与购物车行写入在同一事务内完成，
// 任一失败则整体回滚，商品可售库存与购物车占用之和保持守恒。
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, now func() time.Time) *CartService {
	if now == nil {
		now = time.Now
	}
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, now: now}
}

// AddToCart 加入购物车并锁定库存
//
// 已有同商品行时累加数量，行金额始终重算为 挂牌单价 × 最新数量；
// 商品折扣不落在行金额上，读取购物车时单独计列。
func (s *CartService) AddToCart(userID, productID uint, quantity int) (*models.CartItem, error) {
	if userID == 0 || productID == 0 {
		return nil, ErrNotFound
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item *models.CartItem
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		product, err := productRepo.GetByIDForUpdate(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrNotFound
		}

		existing, err := cartRepo.GetByUserAndProductForUpdate(userID, productID)
		if err != nil {
			return err
		}
		if existing != nil && product.StockQuantity < existing.Quantity+quantity {
			return ErrInsufficientStock
		}

		affected, err := productRepo.ReserveStock(productID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientStock
		}

		unitPrice := product.Price.Decimal
		if existing != nil {
			newQuantity := existing.Quantity + quantity
			if err := cartRepo.Updates(existing.ID, map[string]interface{}{
				"quantity":   newQuantity,
				"price":      models.NewMoneyFromDecimal(unitPrice.Mul(decimal.NewFromInt(int64(newQuantity)))),
				"updated_at": s.now(),
			}); err != nil {
				return err
			}
			item, err = cartRepo.GetByID(existing.ID)
			return err
		}

		item = &models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     models.NewMoneyFromDecimal(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
		}
		return cartRepo.Create(item)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("cart_add_success",
		"user_id", userID,
		"product_id", productID,
		"quantity", quantity,
	)
	return item, nil
}

// UpdateQuantity 调整购物车行数量
//
// 增量部分按差额锁定或归还库存；数量调为 0 等价于移除该行。
func (s *CartService) UpdateQuantity(userID, cartItemID uint, quantity int) (*models.CartItem, error) {
	if userID == 0 || cartItemID == 0 {
		return nil, ErrNotFound
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		if err := s.Remove(userID, cartItemID, true); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var item *models.CartItem
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		existing, err := cartRepo.GetByIDForUpdate(cartItemID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		if existing.UserID != userID {
			return ErrForbidden
		}

		product, err := productRepo.GetByIDForUpdate(existing.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrNotFound
		}

		delta := quantity - existing.Quantity
		if delta > 0 {
			affected, err := productRepo.ReserveStock(existing.ProductID, delta)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientStock
			}
		} else if delta < 0 {
			if _, err := productRepo.RestoreStock(existing.ProductID, -delta); err != nil {
				return err
			}
		}

		unitPrice := product.Price.Decimal
		if err := cartRepo.Updates(existing.ID, map[string]interface{}{
			"quantity":   quantity,
			"price":      models.NewMoneyFromDecimal(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
			"updated_at": s.now(),
		}); err != nil {
			return err
		}
		item, err = cartRepo.GetByID(existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("cart_quantity_update_success",
		"user_id", userID,
		"cart_item_id", cartItemID,
		"quantity", quantity,
	)
	return item, nil
}

// Remove 移除购物车行
//
// restoreStock 为 true 时归还库存；下单后清理已消耗库存的行传 false，
// 避免同一份库存被订单与回补各记一次。
func (s *CartService) Remove(userID, cartItemID uint, restoreStock bool) error {
	if userID == 0 || cartItemID == 0 {
		return ErrNotFound
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		existing, err := cartRepo.GetByIDForUpdate(cartItemID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		if existing.UserID != userID {
			return ErrForbidden
		}

		if restoreStock {
			if _, err := productRepo.RestoreStock(existing.ProductID, existing.Quantity); err != nil {
				return err
			}
		}
		return cartRepo.Delete(existing.ID)
	})
	if err != nil {
		return err
	}

	logger.Infow("cart_remove_success",
		"user_id", userID,
		"cart_item_id", cartItemID,
		"restore_stock", restoreStock,
	)
	return nil
}

// Clear 清空用户购物车
//
// restoreStock 语义同 Remove：结算完成后的清空传 false。
func (s *CartService) Clear(userID uint, restoreStock bool) error {
	if userID == 0 {
		return ErrNotFound
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		items, err := cartRepo.ListByUser(userID)
		if err != nil {
			return err
		}
		for i := range items {
			if restoreStock {
				if _, err := productRepo.RestoreStock(items[i].ProductID, items[i].Quantity); err != nil {
					return err
				}
			}
			if err := cartRepo.Delete(items[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// CartSummary 购物车汇总
//
// 行金额是未折扣的行小计，折扣按商品折扣率在汇总时整体计列；
// 累加全程用原始 decimal，只在写入汇总字段时取 2 位。
type CartSummary struct {
	Items         []models.CartItem `json:"items"`          // 购物车行（含商品）
	TotalItems    int               `json:"total_items"`    // 商品总件数
	Subtotal      models.Money      `json:"subtotal"`       // 行小计之和
	TotalDiscount models.Money      `json:"total_discount"` // 折扣总额
	GrandTotal    models.Money      `json:"grand_total"`    // 应付总额
}

// GetCart 获取用户购物车及汇总
func (s *CartService) GetCart(userID uint) (*CartSummary, error) {
	summary := &CartSummary{Items: []models.CartItem{}}
	if userID == 0 {
		return summary, nil
	}

	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		summary.Items = items
	}

	subtotal := decimal.Zero
	discount := decimal.Zero
	hundred := decimal.NewFromInt(100)
	for i := range items {
		summary.TotalItems += items[i].Quantity
		subtotal = subtotal.Add(items[i].Price.Decimal)
		if items[i].Product != nil && items[i].Product.DiscountPercentage.Decimal.IsPositive() {
			discount = discount.Add(items[i].Price.Decimal.Mul(items[i].Product.DiscountPercentage.Decimal).Div(hundred))
		}
	}

	discount = discount.Round(2)
	summary.Subtotal = models.NewMoneyFromDecimal(subtotal)
	summary.TotalDiscount = models.NewMoneyFromDecimal(discount)
	summary.GrandTotal = models.NewMoneyFromDecimal(subtotal.Sub(discount))
	return summary, nil
}
