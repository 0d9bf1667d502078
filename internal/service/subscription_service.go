package service

import (
	"time"

	"github.com/vendora/vendora/internal/constants"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/repository"

	"gorm.io/gorm"
)

// SubscriptionService 商户订阅服务
//
// active → suspended 只由到期扫描驱动；suspended → active 只由续费驱动。
type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	now              func() time.Time
}

// NewSubscriptionService 创建订阅服务
func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, now func() time.Time) *SubscriptionService {
	if now == nil {
		now = time.Now
	}
	return &SubscriptionService{subscriptionRepo: subscriptionRepo, now: now}
}

// SuspendExpired 批量暂停已过期的订阅
//
// 单语句条件更新保证幂等：已暂停的行不会被二次影响。
func (s *SubscriptionService) SuspendExpired() (int64, error) {
	now := s.now()
	affected, err := s.subscriptionRepo.SuspendExpired(now)
	if err != nil {
		logger.Errorw("subscription_expire_scan_failed", "error", err)
		return 0, err
	}
	if affected > 0 {
		logger.Infow("subscription_expire_scan_success",
			"suspended_count", affected,
			"scanned_at", now,
		)
	}
	return affected, nil
}

// Create 创建商户订阅
func (s *SubscriptionService) Create(merchantID uint, planName string, periodEnd time.Time) (*models.MerchantSubscription, error) {
	if merchantID == 0 {
		return nil, ErrNotFound
	}
	sub := &models.MerchantSubscription{
		MerchantID: merchantID,
		PlanName:   planName,
		Status:     constants.SubscriptionStatusActive,
		PeriodEnd:  periodEnd,
	}
	if err := s.subscriptionRepo.Create(sub); err != nil {
		return nil, err
	}
	logger.Infow("subscription_create_success",
		"subscription_id", sub.ID,
		"merchant_id", merchantID,
		"period_end", periodEnd,
	)
	return sub, nil
}

// Renew 续费订阅
//
// 唯一的 suspended → active 反向迁移入口。续费流水与周期延长在
// 同一事务内写入，新周期自当前周期末或当前时刻的较晚者起算。
func (s *SubscriptionService) Renew(merchantID uint, amount models.Money, duration time.Duration) (*models.MerchantSubscription, error) {
	if merchantID == 0 || duration <= 0 {
		return nil, ErrNotFound
	}

	var sub *models.MerchantSubscription
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.subscriptionRepo.WithTx(tx)

		existing, err := repo.GetByMerchantIDForUpdate(merchantID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}

		now := s.now()
		base := existing.PeriodEnd
		if base.Before(now) {
			base = now
		}
		newPeriodEnd := base.Add(duration)

		if err := repo.Updates(existing.ID, map[string]interface{}{
			"status":       constants.SubscriptionStatusActive,
			"period_end":   newPeriodEnd,
			"suspended_at": nil,
			"updated_at":   now,
		}); err != nil {
			return err
		}
		if err := repo.CreatePayment(&models.SubscriptionPayment{
			SubscriptionID: existing.ID,
			MerchantID:     merchantID,
			Amount:         amount,
			PeriodEnd:      newPeriodEnd,
		}); err != nil {
			return err
		}
		sub, err = repo.GetByID(existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("subscription_renew_success",
		"subscription_id", sub.ID,
		"merchant_id", merchantID,
		"period_end", sub.PeriodEnd,
	)
	return sub, nil
}

// GetByMerchant 获取商户订阅
func (s *SubscriptionService) GetByMerchant(merchantID uint) (*models.MerchantSubscription, error) {
	sub, err := s.subscriptionRepo.GetByMerchantID(merchantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

// ListByStatus 按状态分页查询订阅
func (s *SubscriptionService) ListByStatus(status string, page, pageSize int) ([]models.MerchantSubscription, int64, error) {
	return s.subscriptionRepo.ListByStatus(status, page, pageSize)
}
