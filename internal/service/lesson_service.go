package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrLessonValidation  = errors.New("lesson validation failed")
	ErrAssetNotReady     = errors.New("video asset is not ready")
	ErrDuplicateTitle    = errors.New("duplicate title")
	ErrLessonCreateError = errors.New("lesson creation failed")
)

// CreateLessonInput carries the validated draft plus the asset binding.
type CreateLessonInput struct {
	Title           string
	Description     string
	IsFree          bool
	RemoteAssetID   string
	RemoteLibraryID string
	ThumbnailURL    string
	VideoDuration   int
}

type LessonService interface {
	CreateLesson(ctx context.Context, supplierID, moduleID primitive.ObjectID, input CreateLessonInput) (*domain.Lesson, error)
}

// lessonService implements the LessonService interface.
type lessonService struct {
	lessonRepo repository.LessonRepository
	moduleRepo repository.CourseModuleRepository
	assetRepo  repository.VideoAssetRepository
}

// NewLessonService creates a new instance of lessonService.
func NewLessonService(
	lessonRepo repository.LessonRepository,
	moduleRepo repository.CourseModuleRepository,
	assetRepo repository.VideoAssetRepository,
) LessonService {
	return &lessonService{
		lessonRepo: lessonRepo,
		moduleRepo: moduleRepo,
		assetRepo:  assetRepo,
	}
}

// CreateLesson validates the draft, verifies ownership of the module and the
// referenced asset, and persists exactly one lesson record. The asset must
// have reached the ready state; drafts bound to processing or failed assets
// are refused.
func (s *lessonService) CreateLesson(ctx context.Context, supplierID, moduleID primitive.ObjectID, input CreateLessonInput) (*domain.Lesson, error) {
	if supplierID == primitive.NilObjectID || moduleID == primitive.NilObjectID {
		return nil, errors.New("supplier ID and module ID are required")
	}
	if err := validateLessonDraft(input.Title, input.Description); err != nil {
		return nil, err
	}
	if input.RemoteAssetID == "" {
		return nil, fmt.Errorf("%w: remote asset ID is required", ErrLessonValidation)
	}

	// 1. Verify module existence and ownership
	module, err := s.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, err
	}
	if module.SupplierID != supplierID {
		return nil, ErrModuleAccessDenied
	}

	// 2. Verify the asset exists, belongs to the supplier and is ready
	asset, err := s.assetRepo.GetByRemoteAssetID(ctx, input.RemoteAssetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	if asset.SupplierID != supplierID {
		return nil, ErrAssetAccessDenied
	}
	if asset.Status != domain.AssetStatusReady {
		return nil, ErrAssetNotReady
	}

	// 3. Lesson titles are unique within a module
	exists, err := s.lessonRepo.ExistsByModuleAndTitle(ctx, moduleID, input.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	// 4. Position the lesson at the end of the module
	count, err := s.lessonRepo.CountByModuleID(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	duration := input.VideoDuration
	if duration == 0 {
		duration = asset.DurationSeconds
	}
	thumbnail := input.ThumbnailURL
	if thumbnail == "" {
		thumbnail = asset.ThumbnailURL
	}

	lesson := &domain.Lesson{
		ModuleID:        moduleID,
		SupplierID:      supplierID,
		Title:           input.Title,
		Description:     input.Description,
		IsFree:          input.IsFree,
		Position:        int(count),
		RemoteAssetID:   asset.RemoteAssetID,
		RemoteLibraryID: asset.RemoteLibraryID,
		ThumbnailURL:    thumbnail,
		VideoStatus:     asset.Status,
		VideoDuration:   duration,
	}

	lessonID, err := s.lessonRepo.Create(ctx, lesson)
	if err != nil {
		// The unique (moduleId, title) index closes the race between the
		// existence check and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("%w: %v", ErrLessonCreateError, err)
	}
	lesson.ID = lessonID
	return lesson, nil
}

// validateLessonDraft enforces the metadata bounds: title 3-100 characters,
// description at most 500. Violations are reported per field.
func validateLessonDraft(title, description string) error {
	title = strings.TrimSpace(title)
	if len(title) < domain.LessonTitleMinLen || len(title) > domain.LessonTitleMaxLen {
		return fmt.Errorf("%w: title must be between %d and %d characters",
			ErrLessonValidation, domain.LessonTitleMinLen, domain.LessonTitleMaxLen)
	}
	if len(description) > domain.LessonDescriptionMaxLen {
		return fmt.Errorf("%w: description must be at most %d characters",
			ErrLessonValidation, domain.LessonDescriptionMaxLen)
	}
	return nil
}
