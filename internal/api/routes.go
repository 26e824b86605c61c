package api

import (
	"net/http"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	catalogService service.CatalogService,
	videoService service.VideoService,
	lessonService service.LessonService,
) {
	authHandler := NewAuthHandler(authService)
	catalogHandler := NewCatalogHandler(catalogService)
	videoHandler := NewVideoHandler(videoService)
	lessonHandler := NewLessonHandler(lessonService, catalogService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Supplier Routes ---
		// All routes in this group require authentication AND the supplier role.
		supplierGroup := protected.Group("/supplier")
		supplierGroup.Use(RoleMiddleware(domain.RoleSupplier))
		{
			// Formation management
			supplierGroup.POST("/formations", catalogHandler.CreateFormation)
			supplierGroup.GET("/formations", catalogHandler.GetFormations)

			// Module management
			supplierGroup.POST("/formations/:formationId/modules", catalogHandler.CreateModule)
			supplierGroup.GET("/formations/:formationId/modules", catalogHandler.GetModules)

			// Video ingestion workflow
			// POST   /api/v1/supplier/videos                  - multipart upload
			// GET    /api/v1/supplier/videos/:videoId/status  - transcode status polling
			supplierGroup.POST("/videos", videoHandler.IngestVideo)
			supplierGroup.GET("/videos/:videoId/status", videoHandler.GetAssetStatus)

			// Lesson management
			supplierGroup.POST("/modules/:moduleId/lessons", lessonHandler.CreateLesson)
			supplierGroup.GET("/modules/:moduleId/lessons", lessonHandler.GetLessons)
		}
	}
}
