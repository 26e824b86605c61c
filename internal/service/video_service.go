package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"
	"weokto/course-app/internal/config"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/repository"
	"weokto/course-app/internal/storage"
	"weokto/course-app/internal/videohost"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSizeExceeded      = errors.New("size exceeded")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrAssetNotFound     = errors.New("video asset not found")
	ErrAssetAccessDenied = errors.New("access denied to this video asset")
	ErrIngestFailed      = errors.New("video ingestion failed")
)

// How long the provider gets to pull the original from S3.
const sourceURLExpiry = 6 * time.Hour

type VideoService interface {
	// IngestVideo accepts an uploaded file: stores the original in S3,
	// registers the video with the transcode provider and persists the
	// asset record. The returned asset usually has a non-terminal status.
	IngestVideo(ctx context.Context, supplierID primitive.ObjectID, fileName, contentType string, size int64, title string, body io.Reader) (*domain.VideoAsset, error)

	// GetAssetStatus returns the current asset state for status polling.
	GetAssetStatus(ctx context.Context, supplierID primitive.ObjectID, remoteAssetID string) (*domain.VideoAsset, error)
}

// VideoRegistrar is the slice of the provider client the service needs.
type VideoRegistrar interface {
	RegisterVideo(ctx context.Context, title, sourceURL string) (*videohost.Video, error)
}

// videoService implements the VideoService interface.
type videoService struct {
	assetRepo   repository.VideoAssetRepository
	fileStorage storage.FileStorage
	provider    VideoRegistrar
	maxBytes    int64
}

// NewVideoService creates a new instance of videoService.
func NewVideoService(
	assetRepo repository.VideoAssetRepository,
	fileStorage storage.FileStorage,
	provider VideoRegistrar,
	ingestCfg config.IngestConfig,
) VideoService {
	maxBytes := ingestCfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = domain.MaxVideoBytes
	}
	return &videoService{
		assetRepo:   assetRepo,
		fileStorage: fileStorage,
		provider:    provider,
		maxBytes:    maxBytes,
	}
}

// IngestVideo runs the server side of the ingestion workflow. Client-side
// validation is only a fast path; size and MIME type are checked again here.
func (s *videoService) IngestVideo(ctx context.Context, supplierID primitive.ObjectID, fileName, contentType string, size int64, title string, body io.Reader) (*domain.VideoAsset, error) {
	if supplierID == primitive.NilObjectID {
		return nil, errors.New("supplier ID is required")
	}
	if size <= 0 || size > s.maxBytes {
		return nil, ErrSizeExceeded
	}
	if !domain.IsAllowedVideoContentType(contentType) {
		return nil, ErrUnsupportedFormat
	}
	if title == "" {
		title = defaultTitleFromFileName(fileName)
	}

	// 1. Store the original under a fresh object key.
	objectKey := fmt.Sprintf("videos/%s/%s%s", supplierID.Hex(), uuid.NewString(), path.Ext(fileName))
	if err := s.fileStorage.UploadObject(ctx, objectKey, contentType, body, size); err != nil {
		return nil, fmt.Errorf("%w: storing original: %v", ErrIngestFailed, err)
	}

	// 2. Hand the provider a temporary URL to pull the original from.
	sourceURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, sourceURLExpiry)
	if err != nil {
		s.cleanupObject(objectKey)
		return nil, fmt.Errorf("%w: presigning source URL: %v", ErrIngestFailed, err)
	}

	video, err := s.provider.RegisterVideo(ctx, title, sourceURL)
	if err != nil {
		s.cleanupObject(objectKey)
		return nil, fmt.Errorf("%w: registering with provider: %v", ErrIngestFailed, err)
	}

	// 3. Persist the asset record. Provider ids are immutable from here on.
	asset := &domain.VideoAsset{
		SupplierID:      supplierID,
		RemoteAssetID:   video.VideoID,
		RemoteLibraryID: video.LibraryID,
		S3ObjectKey:     objectKey,
		FileName:        fileName,
		ContentType:     contentType,
		Size:            size,
		Title:           title,
		Status:          video.AssetStatus(),
		ThumbnailURL:    video.ThumbnailURL,
	}

	assetID, err := s.assetRepo.Create(ctx, asset)
	if err != nil {
		s.cleanupObject(objectKey)
		return nil, fmt.Errorf("%w: persisting asset record: %v", ErrIngestFailed, err)
	}
	asset.ID = assetID

	log.Printf("INFO: Ingested video %q as remote asset %s (status %q)", fileName, asset.RemoteAssetID, asset.Status)
	return asset, nil
}

// GetAssetStatus returns the asset identified by the provider-assigned id,
// enforcing that the requesting supplier owns it.
func (s *videoService) GetAssetStatus(ctx context.Context, supplierID primitive.ObjectID, remoteAssetID string) (*domain.VideoAsset, error) {
	if supplierID == primitive.NilObjectID || remoteAssetID == "" {
		return nil, errors.New("supplier ID and remote asset ID are required")
	}

	asset, err := s.assetRepo.GetByRemoteAssetID(ctx, remoteAssetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	if asset.SupplierID != supplierID {
		return nil, ErrAssetAccessDenied
	}
	return asset, nil
}

// cleanupObject best-effort deletes an orphaned original after a failed
// ingestion step. Uses a detached context: the request may already be gone.
func (s *videoService) cleanupObject(objectKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.fileStorage.DeleteObject(ctx, objectKey); err != nil {
		log.Printf("WARN: Failed to clean up orphaned object %q: %v", objectKey, err)
	}
}

// defaultTitleFromFileName strips the last dot-delimited extension.
func defaultTitleFromFileName(fileName string) string {
	ext := path.Ext(fileName)
	return fileName[:len(fileName)-len(ext)]
}
