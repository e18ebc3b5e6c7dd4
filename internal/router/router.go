// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dario9661s/bundles-sub000/internal/config"
	"github.com/dario9661s/bundles-sub000/internal/handlers"
	"github.com/dario9661s/bundles-sub000/internal/middleware"
	"github.com/dario9661s/bundles-sub000/internal/services"
	"github.com/dario9661s/bundles-sub000/internal/shopify"
	"github.com/dario9661s/bundles-sub000/internal/stores"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize the Admin API client and the stores on top of it
	client := shopify.NewClient(cfg.Shopify)
	bundleStore := stores.NewBundleStore(client)
	combinationStore := stores.NewCombinationStore(client)

	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	uploadPipeline := services.NewUploadPipeline(client, cfg.Upload)
	syncService := services.NewSyncService(bundleStore, client, db, cfg.Shopify.ShopDomain, cfg.Sync)
	bulkExecutor := services.NewBulkExecutor(1)
	bundleService := services.NewBundleService(bundleStore, syncService, bulkExecutor)
	combinationService := services.NewCombinationService(combinationStore, uploadPipeline, client, storageService, cfg.Upload.MaxImageBytes)
	pricingService := services.NewPricingService()

	// Initialize handlers
	bundleHandler := handlers.NewBundleHandler(bundleService, pricingService)
	combinationHandler := handlers.NewCombinationHandler(combinationService)
	syncHandler := handlers.NewSyncHandler(syncService)

	// Initialize Gin router. Record ids are GIDs containing slashes, so
	// clients URL-encode them and routing must match the raw path.
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.SessionTokenAuth(&cfg.Shopify))
	{
		bundles := v1.Group("/bundles")
		{
			bundles.GET("", bundleHandler.ListBundles)
			bundles.POST("", bundleHandler.CreateBundle)

			bulk := bundles.Group("/bulk")
			bulk.Use(middleware.BulkRateLimit())
			{
				bulk.POST("/delete", bundleHandler.BulkDelete)
				bulk.POST("/status", bundleHandler.BulkSetStatus)
			}

			bundles.GET("/:id", bundleHandler.GetBundle)
			bundles.PUT("/:id", bundleHandler.UpdateBundle)
			bundles.DELETE("/:id", bundleHandler.DeleteBundle)
			bundles.POST("/:id/duplicate", bundleHandler.DuplicateBundle)
			bundles.POST("/:id/price", bundleHandler.CalculatePrice)

			bundles.POST("/:id/steps", bundleHandler.AddStep)
			bundles.PUT("/:id/steps/reorder", bundleHandler.ReorderSteps)
			bundles.PUT("/:id/steps/:stepId", bundleHandler.UpdateStep)
			bundles.DELETE("/:id/steps/:stepId", bundleHandler.RemoveStep)
		}

		combinations := v1.Group("/combinations")
		{
			combinations.GET("", combinationHandler.ListCombinations)
			combinations.GET("/lookup", combinationHandler.LookupCombination)
			combinations.POST("", middleware.UploadRateLimit(), combinationHandler.CreateCombination)
			combinations.PUT("/:id", middleware.UploadRateLimit(), combinationHandler.UpdateCombination)
			combinations.DELETE("/:id", combinationHandler.DeleteCombination)
		}

		sync := v1.Group("/sync")
		{
			sync.POST("", syncHandler.TriggerSync)
			sync.GET("/runs", syncHandler.ListRuns)
		}
	}

	return r
}
