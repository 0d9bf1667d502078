package router

import (
	"fmt"
	"strings"

	"github.com/vendora/vendora/internal/cache"
	"github.com/vendora/vendora/internal/config"
	adminhandlers "github.com/vendora/vendora/internal/http/handlers/admin"
	publichandlers "github.com/vendora/vendora/internal/http/handlers/public"
	"github.com/vendora/vendora/internal/logger"
	"github.com/vendora/vendora/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vd"
	}
	callbackRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:payment_callback", redisPrefix),
		WindowSeconds: 60,
		MaxRequests:   120,
		Message:       "callback rate exceeded",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))

	r.Static(cfg.Upload.BaseURL, cfg.Upload.Dir)

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("")
		{
			public.GET("/cart", publicHandler.GetCart)
			public.POST("/cart/items", publicHandler.AddCartItem)
			public.PUT("/cart/items/:id", publicHandler.UpdateCartItem)
			public.DELETE("/cart/items/:id", publicHandler.RemoveCartItem)
			public.DELETE("/cart", publicHandler.ClearCart)

			public.POST("/orders", publicHandler.CreateOrder)
			public.GET("/orders", publicHandler.ListOrders)
			public.GET("/orders/:id", publicHandler.GetOrder)

			public.GET("/payments/:transaction_id", publicHandler.GetPayment)
			public.POST("/payments/callback",
				RateLimitMiddleware(cache.Client(), callbackRule, KeyByIP),
				publicHandler.PaymentCallback)

			public.POST("/agents/apply", publicHandler.ApplyAsAgent)
			public.GET("/agents/:id", publicHandler.GetAgent)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/upload", adminHandler.UploadFile)

			admin.POST("/products", adminHandler.SubmitProduct)
			admin.GET("/products", adminHandler.ListProducts)
			admin.POST("/products/:id/approve", adminHandler.ApproveProduct)
			admin.POST("/products/:id/reject", adminHandler.RejectProduct)

			admin.POST("/documents", adminHandler.SubmitDocument)
			admin.POST("/documents/:id/approve", adminHandler.ApproveDocument)
			admin.POST("/documents/:id/reject", adminHandler.RejectDocument)
			admin.GET("/approvals/overdue", adminHandler.ListOverdueApprovals)

			admin.POST("/agents/:id/approve", adminHandler.ApproveAgent)
			admin.POST("/agents/:id/reject", adminHandler.RejectAgent)
			admin.GET("/agent-sales", adminHandler.ListSales)
			admin.POST("/agent-sales/:id/approve", adminHandler.ApproveSale)
			admin.POST("/payouts", adminHandler.CreatePayout)
			admin.GET("/payouts/:id", adminHandler.GetPayout)
			admin.POST("/payouts/:id/complete", adminHandler.CompletePayout)

			admin.POST("/subscriptions", adminHandler.CreateSubscription)
			admin.GET("/subscriptions", adminHandler.ListSubscriptions)
			admin.POST("/subscriptions/:merchant_id/renew", adminHandler.RenewSubscription)
			admin.POST("/subscriptions/expire-scan", adminHandler.RunExpireScan)
		}
	}

	return r
}
