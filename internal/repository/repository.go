package repository

import (
	"context"
	"weokto/course-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate entry")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// FormationRepository defines the interface for interacting with formation data.
type FormationRepository interface {
	Create(ctx context.Context, formation *domain.Formation) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Formation, error)
	GetBySupplierID(ctx context.Context, supplierID primitive.ObjectID) ([]domain.Formation, error)
	Update(ctx context.Context, formation *domain.Formation) error
}

// CourseModuleRepository defines the interface for interacting with course module data.
type CourseModuleRepository interface {
	Create(ctx context.Context, module *domain.CourseModule) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CourseModule, error)
	GetByFormationID(ctx context.Context, formationID primitive.ObjectID) ([]domain.CourseModule, error)
	CountByFormationID(ctx context.Context, formationID primitive.ObjectID) (int64, error)
}

// VideoAssetRepository defines the interface for interacting with video asset metadata.
type VideoAssetRepository interface {
	Create(ctx context.Context, asset *domain.VideoAsset) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoAsset, error)
	GetByRemoteAssetID(ctx context.Context, remoteAssetID string) (*domain.VideoAsset, error)
	ListPending(ctx context.Context, limit int64) ([]domain.VideoAsset, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssetStatus, durationSeconds int, thumbnailURL string) error
}

// LessonRepository defines the interface for interacting with lesson data.
type LessonRepository interface {
	Create(ctx context.Context, lesson *domain.Lesson) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error)
	GetByModuleID(ctx context.Context, moduleID primitive.ObjectID) ([]domain.Lesson, error)
	CountByModuleID(ctx context.Context, moduleID primitive.ObjectID) (int64, error)
	ExistsByModuleAndTitle(ctx context.Context, moduleID primitive.ObjectID, title string) (bool, error)
}
