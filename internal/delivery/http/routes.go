package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/config"
	"github.com/run651/rakumart-1688/internal/infrastructure/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(logger.Recovery(log))
	router.Use(logger.GinMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		products := v1.Group("/products")
		{
			products.POST("/search", handler.SearchProducts)
			products.POST("/categories", handler.Categories)
			products.GET("/:id/detail", handler.ProductDetail)
		}

		v1.POST("/images/search", handler.ImageSearch)
		v1.GET("/logistics", handler.Logistics)
		v1.GET("/logistics/track/:express_no", handler.TrackLogistics)
		v1.GET("/tags", handler.Tags)
		v1.GET("/stock", handler.StockList)

		orders := v1.Group("/orders")
		{
			orders.POST("", handler.CreateOrder)
			orders.GET("", handler.ListOrders)
			orders.GET("/:sn", handler.OrderDetail)
			orders.PUT("/:sn/status", handler.UpdateOrderStatus)
			orders.DELETE("/:sn", handler.CancelOrder)
		}

		porders := v1.Group("/porders")
		{
			porders.POST("", handler.CreatePorder)
			porders.GET("", handler.ListPorders)
			porders.GET("/:sn", handler.PorderDetail)
			porders.PUT("/:sn/status", handler.UpdatePorderStatus)
			porders.DELETE("/:sn", handler.CancelPorder)
		}
	}

	return router
}
