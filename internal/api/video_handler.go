package api

import (
	"errors"
	"log"
	"net/http"
	"weokto/course-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoHandler holds the video service dependency.
type VideoHandler struct {
	videoService service.VideoService
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// --- DTOs ---

// IngestVideoResponse is returned by the ingestion endpoint. The ingest
// client parses this into its RemoteAsset.
type IngestVideoResponse struct {
	RemoteAssetID   string `json:"remoteAssetId"`
	RemoteLibraryID string `json:"remoteLibraryId"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	Status          string `json:"status"`
	Title           string `json:"title"`
}

// AssetStatusResponse is returned by the status endpoint.
type AssetStatusResponse struct {
	RemoteAssetID   string `json:"remoteAssetId"`
	Status          string `json:"status"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// --- Handler Methods ---

// IngestVideo handles POST /supplier/videos.
// Accepts a multipart form with a "file" part and an optional "title" field.
func (h *VideoHandler) IngestVideo(c *gin.Context) {
	supplierIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify supplier from token.")
		return
	}
	supplierID, err := primitive.ObjectIDFromHex(supplierIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid supplier ID format in token.")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Multipart form must contain a 'file' part.")
		return
	}
	title := c.PostForm("title")

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to open uploaded file.")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	asset, err := h.videoService.IngestVideo(
		c.Request.Context(),
		supplierID,
		fileHeader.Filename,
		contentType,
		fileHeader.Size,
		title,
		file,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSizeExceeded):
			abortWithError(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUnsupportedFormat):
			abortWithError(c, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, service.ErrIngestFailed):
			log.Printf("Service Error in IngestVideo: %v", err)
			abortWithError(c, http.StatusBadGateway, "Video ingestion failed.")
		default:
			log.Printf("Service Error in IngestVideo: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to ingest video.")
		}
		return
	}

	c.JSON(http.StatusCreated, IngestVideoResponse{
		RemoteAssetID:   asset.RemoteAssetID,
		RemoteLibraryID: asset.RemoteLibraryID,
		ThumbnailURL:    asset.ThumbnailURL,
		Status:          string(asset.Status),
		Title:           asset.Title,
	})
}

// GetAssetStatus handles GET /supplier/videos/:videoId/status.
// The ingest client polls this until the status is terminal.
func (h *VideoHandler) GetAssetStatus(c *gin.Context) {
	supplierIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify supplier from token.")
		return
	}
	supplierID, err := primitive.ObjectIDFromHex(supplierIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid supplier ID format in token.")
		return
	}

	remoteAssetID := c.Param("videoId")

	asset, err := h.videoService.GetAssetStatus(c.Request.Context(), supplierID, remoteAssetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssetNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssetAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch asset status.")
		}
		return
	}

	c.JSON(http.StatusOK, AssetStatusResponse{
		RemoteAssetID:   asset.RemoteAssetID,
		Status:          string(asset.Status),
		ThumbnailURL:    asset.ThumbnailURL,
		DurationSeconds: asset.DurationSeconds,
	})
}
