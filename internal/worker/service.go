package worker

import (
	"context"
	"errors"
	"time"

	"github.com/vendora/vendora/internal/config"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
//
// 除消费异步任务外，还承载两个固定时刻的每日扫描：
// 订阅到期扫描与审核逾期提醒。
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil {
		go s.runDailyLoop(ctx, s.consumer.Config.Subscription.ScanHour, s.enqueueSubscriptionExpireScan)
		go s.runDailyLoop(ctx, s.consumer.Config.Approval.ScanHour, s.enqueueApprovalOverdueAlert)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runDailyLoop 每天在固定整点触发一次 fn
func (s *Service) runDailyLoop(ctx context.Context, hour int, fn func()) {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	for {
		next := nextRunAt(time.Now(), hour)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			fn()
		}
	}
}

func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Service) enqueueSubscriptionExpireScan() {
	payload := queue.SubscriptionExpireScanPayload{ScheduledAt: time.Now().Unix()}
	if err := s.consumer.QueueClient.EnqueueSubscriptionExpireScan(payload); err != nil {
		logger.Warnw("worker_subscription_expire_scan_enqueue_failed", "error", err)
	}
}

func (s *Service) enqueueApprovalOverdueAlert() {
	payload := queue.ApprovalOverdueAlertPayload{ScheduledAt: time.Now().Unix()}
	if err := s.consumer.QueueClient.EnqueueApprovalOverdueAlert(payload); err != nil {
		logger.Warnw("worker_approval_overdue_alert_enqueue_failed", "error", err)
	}
}
