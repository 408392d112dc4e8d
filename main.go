package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appConfig "github.com/autolane/car-service-api/config"
	"github.com/autolane/car-service-api/controllers"
	"github.com/autolane/car-service-api/middleware"
	"github.com/autolane/car-service-api/models"
	"github.com/autolane/car-service-api/services"
	"github.com/autolane/car-service-api/utils"
)

func main() {
	log.Println("Starting Car Service API server...")

	cfg, err := appConfig.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := appConfig.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := appConfig.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.CarModel{},
		&models.Car{},
		&models.Service{},
		&models.Order{},
		&models.OrderEntry{},
		&models.OrderComment{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// The ledger is the only writer of order sums
	services.InitLedger(db)

	// Attachment store: S3 when a bucket is configured, local disk otherwise
	if cfg.HasS3() {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Println("Using S3 attachment store for car images")
	} else {
		utils.UploadDir = cfg.UploadDir
		services.InitLocalImageService(cfg.UploadDir)
		log.Printf("No S3 bucket configured, storing car images in %s", cfg.UploadDir)
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with all API routes. Auth is applied per
// group; read-only catalog and list endpoints stay public.
func setupRouter(cfg *appConfig.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/stats", shopStats)
		v1.GET("/database/status", databaseStatus)

		// Public browsing
		v1.GET("/car-models", controllers.ListCarModels)
		v1.GET("/car-models/:id", controllers.GetCarModel)
		v1.GET("/cars", controllers.ListCars)
		v1.GET("/services", controllers.ListServices)
		v1.GET("/services/:id", controllers.GetService)
		v1.GET("/orders", controllers.ListOrders)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)

		// Authenticated routes
		auth := v1.Group("")
		auth.Use(middleware.EnsureValidToken(cfg))
		{
			auth.POST("/users", controllers.CreateUser)
			auth.GET("/users/me", controllers.GetMyProfile)
			auth.PUT("/users/me", controllers.UpdateMyProfile)

			auth.POST("/car-models", controllers.CreateCarModel)
			auth.PUT("/car-models/:id", controllers.UpdateCarModel)
			auth.DELETE("/car-models/:id", controllers.DeleteCarModel)

			auth.GET("/cars/my", controllers.ListMyCars)
			auth.GET("/cars/:id", controllers.GetCar)
			auth.POST("/cars", controllers.CreateCar)
			auth.PUT("/cars/:id", controllers.UpdateCar)
			auth.DELETE("/cars/:id", controllers.DeleteCar)
			auth.POST("/cars/:id/image", controllers.UploadCarImage)
			auth.DELETE("/cars/:id/image", controllers.DeleteCarImage)

			auth.POST("/services", controllers.CreateService)
			auth.PUT("/services/:id", controllers.UpdateService)
			auth.DELETE("/services/:id", controllers.DeleteService)

			auth.GET("/orders/my", controllers.ListMyOrders)
			auth.GET("/orders/:id", controllers.GetOrder)
			auth.POST("/orders", controllers.CreateOrder)
			auth.PUT("/orders/:id", controllers.UpdateOrder)
			auth.DELETE("/orders/:id", controllers.DeleteOrder)

			auth.GET("/orders/:id/entries", controllers.ListOrderEntries)
			auth.POST("/orders/:id/entries", controllers.AddOrderEntry)
			auth.PUT("/entries/:id", controllers.UpdateOrderEntry)
			auth.DELETE("/entries/:id", controllers.RemoveOrderEntry)

			auth.GET("/orders/:id/comments", controllers.ListComments)
			auth.POST("/orders/:id/comments", controllers.CreateComment)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Car Service API is running",
	})
}

// shopStats handles GET /api/v1/stats - headline counts for the landing page
func shopStats(c *gin.Context) {
	db := appConfig.GetDB()

	var servicesCount, entriesBilled, carsCount int64
	if err := db.Model(&models.Service{}).Count(&servicesCount).Error; err != nil {
		statsError(c)
		return
	}
	if err := db.Model(&models.OrderEntry{}).Count(&entriesBilled).Error; err != nil {
		statsError(c)
		return
	}
	if err := db.Model(&models.Car{}).Count(&carsCount).Error; err != nil {
		statsError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"services_count": servicesCount,
			"entries_billed": entriesBilled,
			"cars_count":     carsCount,
		},
	})
}

func statsError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Failed to query statistics",
		},
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := appConfig.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
