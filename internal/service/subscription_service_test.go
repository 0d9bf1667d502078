package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var subscriptionTestNow = time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)

func setupSubscriptionServiceTest(t *testing.T) (*SubscriptionService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:subscription_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Merchant{}, &models.MerchantSubscription{}, &models.SubscriptionPayment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	repo := repository.NewSubscriptionRepository(db)
	now := func() time.Time { return subscriptionTestNow }
	return NewSubscriptionService(repo, now), db
}

func TestSuspendExpiredIsIdempotent(t *testing.T) {
	svc, db := setupSubscriptionServiceTest(t)

	expired, err := svc.Create(1, "标准版", subscriptionTestNow.AddDate(0, 0, -3))
	if err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}
	future, err := svc.Create(2, "标准版", subscriptionTestNow.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	affected, err := svc.SuspendExpired()
	if err != nil {
		t.Fatalf("suspend expired failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 suspended row, got %d", affected)
	}

	var suspended models.MerchantSubscription
	if err := db.First(&suspended, expired.ID).Error; err != nil {
		t.Fatalf("reload subscription failed: %v", err)
	}
	if suspended.Status != constants.SubscriptionStatusSuspended {
		t.Fatalf("expected suspended, got %s", suspended.Status)
	}
	if suspended.SuspendedAt == nil || !suspended.SuspendedAt.Equal(subscriptionTestNow) {
		t.Fatalf("expected suspended_at %v, got %v", subscriptionTestNow, suspended.SuspendedAt)
	}

	var untouched models.MerchantSubscription
	if err := db.First(&untouched, future.ID).Error; err != nil {
		t.Fatalf("reload subscription failed: %v", err)
	}
	if untouched.Status != constants.SubscriptionStatusActive {
		t.Fatalf("future subscription must stay active, got %s", untouched.Status)
	}

	// 再次扫描既不报错也不重复影响
	affected, err = svc.SuspendExpired()
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows on second scan, got %d", affected)
	}
}

func TestRenewReactivatesSuspendedSubscription(t *testing.T) {
	svc, db := setupSubscriptionServiceTest(t)

	created, err := svc.Create(1, "标准版", subscriptionTestNow.AddDate(0, 0, -3))
	if err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}
	if _, err := svc.SuspendExpired(); err != nil {
		t.Fatalf("suspend expired failed: %v", err)
	}

	renewed, err := svc.Renew(1, mustMoney(t, "49.90"), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if renewed.Status != constants.SubscriptionStatusActive {
		t.Fatalf("expected active after renew, got %s", renewed.Status)
	}
	if renewed.SuspendedAt != nil {
		t.Fatalf("renew must clear suspended_at, got %v", renewed.SuspendedAt)
	}
	// 周期已过期，新周期自当前时刻起算
	want := subscriptionTestNow.Add(30 * 24 * time.Hour)
	if !renewed.PeriodEnd.Equal(want) {
		t.Fatalf("expected period_end %v, got %v", want, renewed.PeriodEnd)
	}

	var payment models.SubscriptionPayment
	if err := db.Where("subscription_id = ?", created.ID).First(&payment).Error; err != nil {
		t.Fatalf("load renewal payment failed: %v", err)
	}
	if !payment.Amount.Decimal.Equal(mustMoney(t, "49.90").Decimal) {
		t.Fatalf("expected payment 49.90, got %s", payment.Amount.String())
	}
	if !payment.PeriodEnd.Equal(want) {
		t.Fatalf("expected payment period_end %v, got %v", want, payment.PeriodEnd)
	}
}

func TestRenewExtendsActiveSubscriptionFromPeriodEnd(t *testing.T) {
	svc, _ := setupSubscriptionServiceTest(t)

	periodEnd := subscriptionTestNow.AddDate(0, 0, 10)
	if _, err := svc.Create(1, "标准版", periodEnd); err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	renewed, err := svc.Renew(1, mustMoney(t, "49.90"), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	want := periodEnd.Add(30 * 24 * time.Hour)
	if !renewed.PeriodEnd.Equal(want) {
		t.Fatalf("expected period_end extended to %v, got %v", want, renewed.PeriodEnd)
	}
	if renewed.Status != constants.SubscriptionStatusActive {
		t.Fatalf("expected active, got %s", renewed.Status)
	}
}

func TestRenewValidatesInput(t *testing.T) {
	svc, _ := setupSubscriptionServiceTest(t)

	if _, err := svc.Renew(4242, mustMoney(t, "49.90"), 30*24*time.Hour); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown merchant, got %v", err)
	}
	if _, err := svc.Renew(1, mustMoney(t, "49.90"), 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for zero duration, got %v", err)
	}
}
