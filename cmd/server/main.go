// cmd/server/main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Dasione/ai-fitness/internal/analysis"
	"github.com/Dasione/ai-fitness/internal/auth"
	"github.com/Dasione/ai-fitness/internal/config"
	"github.com/Dasione/ai-fitness/internal/database"
	"github.com/Dasione/ai-fitness/internal/handlers"
	"github.com/Dasione/ai-fitness/internal/media"
	"github.com/Dasione/ai-fitness/internal/middleware"
	"github.com/Dasione/ai-fitness/internal/processor"
	"github.com/Dasione/ai-fitness/internal/scoring"
	"github.com/Dasione/ai-fitness/internal/stats"
	"github.com/Dasione/ai-fitness/internal/storage"
	"github.com/Dasione/ai-fitness/internal/video"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := database.InitDB(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.MigrateDB(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	var store storage.Store
	var localStore *storage.LocalStore
	switch cfg.StorageBackend {
	case "minio":
		store, err = storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatal("Failed to initialize MinIO storage:", err)
		}
	default:
		localStore, err = storage.NewLocalStore(cfg.DataDir)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
		store = localStore
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	scorer := scoring.NewClient(cfg.ProcessorURL)
	prober := media.NewFFmpegProber()
	supervisor := processor.NewSupervisor(cfg.PythonExec, cfg.ProcessorScript)

	videoSvc := video.NewService(db, store, prober, cfg.VideosDir, cfg.ThumbnailsDir, cfg.SegmentsDir)
	analysisSvc := analysis.NewService(db, scorer, store, cfg.VideosDir, cfg.SegmentsDir)
	statsSvc := stats.NewService(db)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	// Blobs are served as static files when stored on local disk.
	if localStore != nil {
		r.Static("/uploads", localStore.Root()+"/uploads")
		r.Static("/runs", localStore.Root()+"/runs")
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register(db, tokens))
		authGroup.POST("/login", handlers.Login(db, tokens))
		authGroup.GET("/validate", middleware.AuthMiddleware(tokens), handlers.ValidateToken(db))
	}

	userGroup := api.Group("/user")
	userGroup.Use(middleware.AuthMiddleware(tokens))
	{
		userGroup.GET("/profile", handlers.GetProfile(db))
		userGroup.PATCH("/profile", handlers.UpdateProfile(db))
		userGroup.POST("/avatar", handlers.UploadAvatar(db, store, cfg.AvatarsDir))
		userGroup.POST("/password", handlers.ChangePassword(db))
	}

	videoGroup := api.Group("/videos")
	videoGroup.Use(middleware.AuthMiddleware(tokens))
	{
		videoGroup.GET("/dashboard", handlers.GetDashboard(statsSvc))
		videoGroup.GET("", handlers.GetVideos(videoSvc))
		videoGroup.POST("", handlers.UploadVideo(videoSvc))
		videoGroup.POST("/batch-delete", handlers.BatchDeleteVideos(videoSvc))
		videoGroup.POST("/start-service", handlers.StartProcessorService(supervisor))
		videoGroup.POST("/stop-service", handlers.StopProcessorService(supervisor))
		videoGroup.GET("/:id", handlers.GetVideo(videoSvc))
		videoGroup.PUT("/:id", handlers.UpdateVideo(videoSvc))
		videoGroup.DELETE("/:id", handlers.DeleteVideo(videoSvc))
		videoGroup.POST("/:id/analyze", handlers.StartAnalysis(analysisSvc))
		videoGroup.GET("/:id/analysis", handlers.GetAnalysis(analysisSvc))
		videoGroup.DELETE("/:id/analysis", handlers.DeleteAnalysis(analysisSvc))
	}

	statsGroup := api.Group("/stats")
	statsGroup.Use(middleware.AuthMiddleware(tokens))
	{
		statsGroup.GET("/user-ranking", handlers.GetUserRanking(statsSvc))
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
