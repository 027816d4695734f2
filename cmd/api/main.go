package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"student-success-api/classifier"
	"student-success-api/config"
	"student-success-api/generator"
	"student-success-api/handlers"
	"student-success-api/middleware"
	"student-success-api/models"
	"student-success-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	params := generator.DefaultParams()
	if cfg.Generator.ParamsFile != "" {
		params, err = generator.LoadParams(cfg.Generator.ParamsFile)
		if err != nil {
			log.Fatalf("Failed to load generator params: %v", err)
		}
	}

	// Connect to database
	db, err := openDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get sql db handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := db.AutoMigrate(&models.Student{}, &models.User{}, &models.DatasetRun{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis is optional: without it lists are not cached and the live feed is off.
	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("Continuing without Redis: %v", err)
	}
	defer cache.Close()

	authService := services.NewAuthService(cfg.JWT, db)
	studentService := services.NewStudentService(db, classifier.ScoreClassifier{}, cache, cfg.Export.Path)

	router := newRouter(cfg, db, params, cache, authService, studentService)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s (db=%s, model=%s)", addr, cfg.Database.Driver, studentService.Classifier().Version())
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func openDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		return gorm.Open(sqlite.Open(cfg.GetDSN()), &gorm.Config{})
	}
	return gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
}

func newRouter(
	cfg *config.Config,
	db *gorm.DB,
	params generator.Params,
	cache *services.CacheService,
	authService *services.AuthService,
	studentService *services.StudentService,
) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "UP",
			"message": "Student Success API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(authService)
	studentsHandler := handlers.NewStudentsHandler(studentService, cache)
	predictHandler := handlers.NewPredictHandler(studentService.Classifier())
	datasetsHandler := handlers.NewDatasetsHandler(db, params, cfg.Generator.MaxAPISize)
	requireAuth := middleware.RequireAuth(authService)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)

		v1.GET("/students", studentsHandler.ListStudents)
		v1.POST("/students", requireAuth, studentsHandler.AddStudent)
		v1.GET("/students/export", studentsHandler.DownloadCSV)
		v1.POST("/students/export", requireAuth, studentsHandler.WriteExport)

		v1.POST("/predict", predictHandler.PredictOne)
		v1.POST("/predict/batch", predictHandler.PredictBatch)

		v1.POST("/datasets/generate", requireAuth, datasetsHandler.Generate)
	}

	router.GET("/ws/live", handlers.LivePredictions(cache, authService))

	return router
}
