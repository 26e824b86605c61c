package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"weokto/course-app/internal/api"
	"weokto/course-app/internal/config"
	"weokto/course-app/internal/repository/mongo"
	"weokto/course-app/internal/service"
	"weokto/course-app/internal/storage"
	"weokto/course-app/internal/transcode"
	"weokto/course-app/internal/videohost"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Course App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureFormationIndexes(ctx, appDB.Collection("formations"))
		mongo.EnsureCourseModuleIndexes(ctx, appDB.Collection("course_modules"))
		mongo.EnsureVideoAssetIndexes(ctx, appDB.Collection("video_assets"))
		mongo.EnsureLessonIndexes(ctx, appDB.Collection("lessons"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Transcode Provider Client ---
	providerClient := videohost.NewClient(cfg.VideoHost)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	formationRepo := mongo.NewMongoFormationRepository(appDB)
	moduleRepo := mongo.NewMongoCourseModuleRepository(appDB)
	assetRepo := mongo.NewMongoVideoAssetRepository(appDB)
	lessonRepo := mongo.NewMongoLessonRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	catalogService := service.NewCatalogService(formationRepo, moduleRepo, lessonRepo)
	videoService := service.NewVideoService(assetRepo, fileStorage, providerClient, cfg.Ingest)
	lessonService := service.NewLessonService(lessonRepo, moduleRepo, assetRepo)

	// --- Start Transcode Poller ---
	// Keeps the status endpoint fresh by reconciling pending assets
	// against the provider in the background.
	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	poller := transcode.NewPoller(assetRepo, providerClient, cfg.VideoHost.PollInterval, int64(cfg.VideoHost.PollBatch))
	go poller.Run(pollerCtx)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, catalogService, videoService, lessonService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Minute, // Large video uploads need generous read timeouts
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopPoller()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
