package api

import (
	"errors"
	"log"
	"net/http"
	"time"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LessonHandler holds the lesson and catalog service dependencies.
type LessonHandler struct {
	lessonService  service.LessonService
	catalogService service.CatalogService
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(lessonService service.LessonService, catalogService service.CatalogService) *LessonHandler {
	return &LessonHandler{
		lessonService:  lessonService,
		catalogService: catalogService,
	}
}

// --- DTOs ---

// CreateLessonRequest defines the expected JSON for creating a lesson.
// Field bounds mirror the service-side validation so most bad drafts are
// refused during binding already.
type CreateLessonRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=100"`
	Description     string `json:"description" binding:"omitempty,max=500"`
	IsFree          bool   `json:"isFree"`
	RemoteAssetID   string `json:"remoteAssetId" binding:"required"`
	RemoteLibraryID string `json:"remoteLibraryId" binding:"required"`
	ThumbnailURL    string `json:"thumbnailUrl" binding:"omitempty,url"`
	Status          string `json:"status" binding:"omitempty"`
	VideoDuration   int    `json:"videoDuration" binding:"omitempty,min=0"`
}

// LessonResponse is the DTO for returning lesson details.
type LessonResponse struct {
	ID              string    `json:"id"`
	ModuleID        string    `json:"moduleId"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	IsFree          bool      `json:"isFree"`
	Position        int       `json:"position"`
	RemoteAssetID   string    `json:"remoteAssetId"`
	RemoteLibraryID string    `json:"remoteLibraryId"`
	ThumbnailURL    string    `json:"thumbnailUrl,omitempty"`
	VideoStatus     string    `json:"videoStatus"`
	VideoDuration   int       `json:"videoDuration,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// MapLessonToResponse converts a domain.Lesson to LessonResponse DTO.
func MapLessonToResponse(l *domain.Lesson) LessonResponse {
	if l == nil {
		return LessonResponse{}
	}
	return LessonResponse{
		ID:              l.ID.Hex(),
		ModuleID:        l.ModuleID.Hex(),
		Title:           l.Title,
		Description:     l.Description,
		IsFree:          l.IsFree,
		Position:        l.Position,
		RemoteAssetID:   l.RemoteAssetID,
		RemoteLibraryID: l.RemoteLibraryID,
		ThumbnailURL:    l.ThumbnailURL,
		VideoStatus:     string(l.VideoStatus),
		VideoDuration:   l.VideoDuration,
		CreatedAt:       l.CreatedAt,
	}
}

// --- Handler Methods ---

// CreateLesson handles POST /supplier/modules/:moduleId/lessons.
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	supplierID, ok := supplierIDFromContext(c)
	if !ok {
		return
	}

	moduleID, err := primitive.ObjectIDFromHex(c.Param("moduleId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid module ID.")
		return
	}

	var req CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	lesson, err := h.lessonService.CreateLesson(c.Request.Context(), supplierID, moduleID, service.CreateLessonInput{
		Title:           req.Title,
		Description:     req.Description,
		IsFree:          req.IsFree,
		RemoteAssetID:   req.RemoteAssetID,
		RemoteLibraryID: req.RemoteLibraryID,
		ThumbnailURL:    req.ThumbnailURL,
		VideoDuration:   req.VideoDuration,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrModuleNotFound), errors.Is(err, service.ErrAssetNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrModuleAccessDenied), errors.Is(err, service.ErrAssetAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrAssetNotReady):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrDuplicateTitle):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			log.Printf("Service Error in CreateLesson: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to create lesson.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapLessonToResponse(lesson))
}

// GetLessons handles GET /supplier/modules/:moduleId/lessons.
func (h *LessonHandler) GetLessons(c *gin.Context) {
	supplierID, ok := supplierIDFromContext(c)
	if !ok {
		return
	}

	moduleID, err := primitive.ObjectIDFromHex(c.Param("moduleId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid module ID.")
		return
	}

	lessons, err := h.catalogService.GetLessonsForModule(c.Request.Context(), supplierID, moduleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrModuleNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrModuleAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve lessons.")
		}
		return
	}

	responses := make([]LessonResponse, len(lessons))
	for i := range lessons {
		responses[i] = MapLessonToResponse(&lessons[i])
	}
	c.JSON(http.StatusOK, responses)
}
