package service

import (
	"context"
	"errors"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrFormationNotFound     = errors.New("formation not found")
	ErrFormationAccessDenied = errors.New("access denied to this formation")
	ErrModuleNotFound        = errors.New("course module not found")
	ErrModuleAccessDenied    = errors.New("access denied to this course module")
)

type CatalogService interface {
	// Formation Management
	CreateFormation(ctx context.Context, supplierID primitive.ObjectID, name, description string) (*domain.Formation, error)
	GetFormationsBySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]domain.Formation, error)

	// Module Management
	CreateModule(ctx context.Context, supplierID, formationID primitive.ObjectID, title string) (*domain.CourseModule, error)
	GetModulesForFormation(ctx context.Context, supplierID, formationID primitive.ObjectID) ([]domain.CourseModule, error)

	// Lesson listing (creation goes through LessonService)
	GetLessonsForModule(ctx context.Context, supplierID, moduleID primitive.ObjectID) ([]domain.Lesson, error)
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	formationRepo repository.FormationRepository
	moduleRepo    repository.CourseModuleRepository
	lessonRepo    repository.LessonRepository
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	formationRepo repository.FormationRepository,
	moduleRepo repository.CourseModuleRepository,
	lessonRepo repository.LessonRepository,
) CatalogService {
	return &catalogService{
		formationRepo: formationRepo,
		moduleRepo:    moduleRepo,
		lessonRepo:    lessonRepo,
	}
}

// === Formation Management ===

// CreateFormation creates a new formation owned by the supplier.
func (s *catalogService) CreateFormation(ctx context.Context, supplierID primitive.ObjectID, name, description string) (*domain.Formation, error) {
	if supplierID == primitive.NilObjectID || name == "" {
		return nil, errors.New("supplier ID and formation name are required")
	}

	formation := &domain.Formation{
		SupplierID:  supplierID,
		Name:        name,
		Description: description,
		IsPublished: false, // New formations start unpublished
	}

	formationID, err := s.formationRepo.Create(ctx, formation)
	if err != nil {
		return nil, err
	}
	formation.ID = formationID
	return formation, nil
}

// GetFormationsBySupplier retrieves all formations owned by the supplier.
func (s *catalogService) GetFormationsBySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]domain.Formation, error) {
	if supplierID == primitive.NilObjectID {
		return nil, errors.New("supplier ID is required")
	}
	return s.formationRepo.GetBySupplierID(ctx, supplierID)
}

// === Module Management ===

// CreateModule appends a new module to a formation owned by the supplier.
func (s *catalogService) CreateModule(ctx context.Context, supplierID, formationID primitive.ObjectID, title string) (*domain.CourseModule, error) {
	if supplierID == primitive.NilObjectID || formationID == primitive.NilObjectID || title == "" {
		return nil, errors.New("supplier ID, formation ID and title are required")
	}

	// Verify formation existence and ownership
	formation, err := s.formationRepo.GetByID(ctx, formationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFormationNotFound
		}
		return nil, err
	}
	if formation.SupplierID != supplierID {
		return nil, ErrFormationAccessDenied
	}

	// Position the module at the end of the formation
	count, err := s.moduleRepo.CountByFormationID(ctx, formationID)
	if err != nil {
		return nil, err
	}

	module := &domain.CourseModule{
		FormationID: formationID,
		SupplierID:  supplierID, // Denormalized for ownership checks
		Title:       title,
		Position:    int(count),
	}

	moduleID, err := s.moduleRepo.Create(ctx, module)
	if err != nil {
		return nil, err
	}
	module.ID = moduleID
	return module, nil
}

// GetModulesForFormation retrieves the modules of a formation owned by the supplier.
func (s *catalogService) GetModulesForFormation(ctx context.Context, supplierID, formationID primitive.ObjectID) ([]domain.CourseModule, error) {
	if supplierID == primitive.NilObjectID || formationID == primitive.NilObjectID {
		return nil, errors.New("supplier ID and formation ID are required")
	}

	formation, err := s.formationRepo.GetByID(ctx, formationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFormationNotFound
		}
		return nil, err
	}
	if formation.SupplierID != supplierID {
		return nil, ErrFormationAccessDenied
	}

	return s.moduleRepo.GetByFormationID(ctx, formationID)
}

// GetLessonsForModule retrieves the lessons of a module owned by the supplier.
func (s *catalogService) GetLessonsForModule(ctx context.Context, supplierID, moduleID primitive.ObjectID) ([]domain.Lesson, error) {
	if supplierID == primitive.NilObjectID || moduleID == primitive.NilObjectID {
		return nil, errors.New("supplier ID and module ID are required")
	}

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

	return s.lessonRepo.GetByModuleID(ctx, moduleID)
}
