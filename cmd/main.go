package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/cache"
	"catalog-service/internal/config"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/services/attribute"
	"catalog-service/internal/services/variant"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	var redisClient *redis.Client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
	} else {
		redisClient = redis.NewClient(redisOpts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
			redisClient = nil
		} else {
			log.Println("✓ Redis connected successfully")
		}
		cancel()
	}

	// Initialize repository, cache, services
	repo := repository.NewCatalogRepository(db)
	legalValueCache := cache.New(redisClient, cfg.CacheKeyPrefix)

	validator := attribute.NewValidationService(repo, legalValueCache, logger)
	engine := variant.NewEngine(logger)
	productAttributes := attribute.NewProductAttributeService(repo, validator, engine, logger)

	// Initialize handlers
	attributesHandler := handlers.NewAttributesHandler(repo, validator)
	subcategoriesHandler := handlers.NewSubcategoriesHandler(repo, validator)
	productsHandler := handlers.NewProductsHandler(productAttributes, repo)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	// API routes
	v1 := router.Group("/api/v1")
	{
		attributes := v1.Group("/attributes")
		{
			attributes.GET("", attributesHandler.ListAttributes)
			attributes.POST("", attributesHandler.CreateAttribute)
			attributes.GET("/:id", attributesHandler.GetAttribute)
			attributes.PUT("/:id", attributesHandler.UpdateAttribute)
			attributes.DELETE("/:id", attributesHandler.DeleteAttribute)

			attributes.POST("/:id/values", attributesHandler.CreateValue)
			attributes.PUT("/:id/values/:valueId", attributesHandler.UpdateValue)
			attributes.DELETE("/:id/values/:valueId", attributesHandler.DeleteValue)
		}

		subcategories := v1.Group("/subcategories")
		{
			subcategories.GET("/:id/attributes", subcategoriesHandler.ListAttributes)
			subcategories.PUT("/:id/attributes/:attributeId", subcategoriesHandler.LinkAttribute)
			subcategories.DELETE("/:id/attributes/:attributeId", subcategoriesHandler.UnlinkAttribute)
			subcategories.PUT("/:id/attributes/:attributeId/values", subcategoriesHandler.ReplaceLegalValues)
		}

		products := v1.Group("/products")
		{
			products.PUT("/:id/attribute-values", productsHandler.UpdateAttributeValues)
			products.POST("/:id/attributes/sync", productsHandler.SyncAttributes)
			products.GET("/:id/variants", productsHandler.GetVariants)
			products.POST("/:id/variants/regenerate", productsHandler.RegenerateVariants)
			products.GET("/:id/variants/export", productsHandler.ExportVariants)
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down catalog-service...")

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	log.Println("Catalog service stopped")
}
