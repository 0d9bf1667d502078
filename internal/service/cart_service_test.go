package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var cartTestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:cart_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Merchant{}, &models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	svc := NewCartService(cartRepo, productRepo, func() time.Time { return cartTestNow })
	return svc, db
}

func createCartTestProduct(t *testing.T, db *gorm.DB, price string, stock int) *models.Product {
	t.Helper()
	return createDiscountedCartTestProduct(t, db, price, "0", stock)
}

func createDiscountedCartTestProduct(t *testing.T, db *gorm.DB, price, discount string, stock int) *models.Product {
	t.Helper()
	money, err := models.NewMoneyFromString(price)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	discountPct, err := models.NewMoneyFromString(discount)
	if err != nil {
		t.Fatalf("parse discount failed: %v", err)
	}
	product := &models.Product{
		Name:               "test product",
		Price:              money,
		DiscountPercentage: discountPct,
		StockQuantity:      stock,
		ApprovalStatus:     "approved",
		IsVisible:          true,
		UploadedBy:         1,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) *models.Product {
	t.Helper()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return &product
}

func TestAddToCartReservesStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "19.99", 10)

	item, err := svc.AddToCart(1, product.ID, 3)
	if err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", item.Quantity)
	}
	wantPrice := decimal.RequireFromString("59.97")
	if !item.Price.Decimal.Equal(wantPrice) {
		t.Fatalf("expected line total %s, got %s", wantPrice, item.Price.Decimal)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 7 {
		t.Fatalf("expected stock 7 after reservation, got %d", got)
	}
}

func TestAddToCartInsufficientStockRollsBack(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "10.00", 2)

	if _, err := svc.AddToCart(1, product.ID, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", got)
	}
	var count int64
	if err := db.Model(&models.CartItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no cart rows after rollback, got %d", count)
	}
}

func TestAddToCartAccumulatesExistingLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "10.00", 20)

	if _, err := svc.AddToCart(1, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	item, err := svc.AddToCart(1, product.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("expected accumulated quantity 5, got %d", item.Quantity)
	}
	if !item.Price.Decimal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected line total 50.00, got %s", item.Price.Decimal)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 15 {
		t.Fatalf("expected stock 15, got %d", got)
	}

	var lines int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ? AND product_id = ?", 1, product.ID).Count(&lines).Error; err != nil {
		t.Fatalf("count lines failed: %v", err)
	}
	if lines != 1 {
		t.Fatalf("expected single cart line, got %d", lines)
	}
}

func TestAddToCartExistingLineRequiresCombinedStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "10.00", 10)

	if _, err := svc.AddToCart(1, product.ID, 4); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	// 余量 6 虽大于追加量 3，但未达到已有 4 + 追加 3 的门槛
	if _, err := svc.AddToCart(1, product.ID, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock on combined check, got %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 6 {
		t.Fatalf("expected stock 6 untouched by failed add, got %d", got)
	}
}

func TestUpdateQuantityDeltaAdjustsStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "5.00", 10)

	item, err := svc.AddToCart(7, product.ID, 5)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	item, err = svc.UpdateQuantity(7, item.ID, 2)
	if err != nil {
		t.Fatalf("shrink failed: %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 8 {
		t.Fatalf("expected stock 8 after shrink, got %d", got)
	}
	if !item.Price.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected line total 10.00, got %s", item.Price.Decimal)
	}

	item, err = svc.UpdateQuantity(7, item.ID, 4)
	if err != nil {
		t.Fatalf("grow failed: %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 6 {
		t.Fatalf("expected stock 6 after grow, got %d", got)
	}
	if item.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", item.Quantity)
	}
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "5.00", 10)

	item, err := svc.AddToCart(7, product.ID, 5)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.UpdateQuantity(7, item.ID, 0); err != nil {
		t.Fatalf("zero update failed: %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 10 {
		t.Fatalf("expected full stock restored, got %d", got)
	}
	summary, err := svc.GetCart(7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(summary.Items))
	}
}

func TestUpdateQuantityForbiddenForOtherUser(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "5.00", 10)

	item, err := svc.AddToCart(7, product.ID, 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.UpdateQuantity(8, item.ID, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRemoveRestoresStockConservation(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "5.00", 10)

	item, err := svc.AddToCart(7, product.ID, 6)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Remove(7, item.ID, true); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 10 {
		t.Fatalf("expected stock back to 10, got %d", got)
	}
}

func TestRemoveWithoutRestockKeepsStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "5.00", 10)

	item, err := svc.AddToCart(7, product.ID, 4)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// 库存已随下单消耗，清行不得再回补
	if err := svc.Remove(7, item.ID, false); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 6 {
		t.Fatalf("expected stock to stay at 6, got %d", got)
	}
	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 7).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected line deleted, got %d rows", count)
	}
}

func TestClearWithoutRestockKeepsStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "5.00", 10)

	if _, err := svc.AddToCart(7, product.ID, 4); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Clear(7, false); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 6 {
		t.Fatalf("expected stock to stay at 6, got %d", got)
	}
	summary, err := svc.GetCart(7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(summary.Items))
	}
}

func TestAddToCartStoresUndiscountedLineTotal(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createDiscountedCartTestProduct(t, db, "100.00", "10", 10)

	item, err := svc.AddToCart(1, product.ID, 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// 行金额存未折扣小计，折扣只在购物车汇总里体现
	if !item.Price.Decimal.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected line total 200.00, got %s", item.Price.Decimal)
	}
}

func TestGetCartAggregatesTotals(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	plain := createCartTestProduct(t, db, "19.99", 10)
	discounted := createDiscountedCartTestProduct(t, db, "100.00", "10", 10)

	if _, err := svc.AddToCart(1, plain.ID, 3); err != nil {
		t.Fatalf("add plain failed: %v", err)
	}
	if _, err := svc.AddToCart(1, discounted.ID, 2); err != nil {
		t.Fatalf("add discounted failed: %v", err)
	}

	summary, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(summary.Items))
	}
	if summary.TotalItems != 5 {
		t.Fatalf("expected 5 total items, got %d", summary.TotalItems)
	}
	if !summary.Subtotal.Decimal.Equal(decimal.RequireFromString("259.97")) {
		t.Fatalf("expected subtotal 259.97, got %s", summary.Subtotal.Decimal)
	}
	if !summary.TotalDiscount.Decimal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected discount 20.00, got %s", summary.TotalDiscount.Decimal)
	}
	if !summary.GrandTotal.Decimal.Equal(decimal.RequireFromString("239.97")) {
		t.Fatalf("expected grand total 239.97, got %s", summary.GrandTotal.Decimal)
	}
}

func TestGetCartEmptyReturnsZeroTotals(t *testing.T) {
	svc, _ := setupCartServiceTest(t)

	summary, err := svc.GetCart(42)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if summary.TotalItems != 0 {
		t.Fatalf("expected 0 items, got %d", summary.TotalItems)
	}
	if !summary.GrandTotal.Decimal.IsZero() {
		t.Fatalf("expected zero grand total, got %s", summary.GrandTotal.Decimal)
	}
}

func TestConcurrentAddsDoNotOversell(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "10.00", 5)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// 两个请求各自在限额内，合计超出库存，只允许其中一个成功
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, results[n] = svc.AddToCart(uint(n+1), product.ID, 3)
		}(i)
	}
	wg.Wait()

	var succeeded, exhausted int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || exhausted != 1 {
		t.Fatalf("expected exactly one add to win, got %d success / %d exhausted", succeeded, exhausted)
	}
	if got := reloadProduct(t, db, product.ID).StockQuantity; got != 2 {
		t.Fatalf("expected stock 2 after single winning add, got %d", got)
	}
}
