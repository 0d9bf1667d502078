package provider

import (
	"time"

	"github.com/vendora/vendora/internal/cache"
	"github.com/vendora/vendora/internal/config"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/models"
	"github.com/vendora/vendora/internal/queue"
	"github.com/vendora/vendora/internal/repository"
	"github.com/vendora/vendora/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ProductRepo      repository.ProductRepository
	CartRepo         repository.CartRepository
	OrderRepo        repository.OrderRepository
	PaymentRepo      repository.PaymentRepository
	DocumentRepo     repository.DocumentRepository
	AgentRepo        repository.AgentRepository
	SubscriptionRepo repository.SubscriptionRepository

	// Services
	CartService         *service.CartService
	OrderService        *service.OrderService
	PaymentService      *service.PaymentService
	ApprovalService     *service.ApprovalService
	AgentService        *service.AgentService
	SubscriptionService *service.SubscriptionService
	UploadService       *service.UploadService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.DocumentRepo = repository.NewDocumentRepository(db)
	c.AgentRepo = repository.NewAgentRepository(db)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db)
}

func (c *Container) initServices() {
	now := time.Now
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, now)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.PaymentRepo, now)
	c.PaymentService = service.NewPaymentService(c.PaymentRepo, c.OrderRepo, now)
	c.ApprovalService = service.NewApprovalService(c.ProductRepo, c.DocumentRepo, c.Config.Approval.DeadlineDays, now)
	c.AgentService = service.NewAgentService(c.AgentRepo, c.ProductRepo, c.OrderRepo, c.Config.Agent.DefaultCommissionRate, now)
	c.SubscriptionService = service.NewSubscriptionService(c.SubscriptionRepo, now)
	c.UploadService = service.NewUploadService(c.Config)
}
