package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/repository"
	"weokto/course-app/internal/videohost"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the Mongo repositories, the S3 storage and the
// transcode provider. They mirror the guard behaviour of the real
// implementations where the services depend on it.

func primitiveID(t *testing.T) primitive.ObjectID {
	t.Helper()
	return primitive.NewObjectID()
}

type fakeAssetRepo struct {
	mu     sync.Mutex
	assets map[primitive.ObjectID]*domain.VideoAsset

	createErr error
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: make(map[primitive.ObjectID]*domain.VideoAsset)}
}

func (r *fakeAssetRepo) Create(ctx context.Context, asset *domain.VideoAsset) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	id := primitive.NewObjectID()
	stored := *asset
	stored.ID = id
	stored.UploadedAt = time.Now()
	r.assets[id] = &stored
	return id, nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *asset
	return &copied, nil
}

func (r *fakeAssetRepo) GetByRemoteAssetID(ctx context.Context, remoteAssetID string) (*domain.VideoAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, asset := range r.assets {
		if asset.RemoteAssetID == remoteAssetID {
			copied := *asset
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAssetRepo) ListPending(ctx context.Context, limit int64) ([]domain.VideoAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []domain.VideoAsset
	for _, asset := range r.assets {
		if !asset.Status.IsTerminal() && int64(len(pending)) < limit {
			pending = append(pending, *asset)
		}
	}
	return pending, nil
}

// UpdateStatus refuses to touch terminal assets, like the Mongo filter does.
func (r *fakeAssetRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssetStatus, durationSeconds int, thumbnailURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok || asset.Status.IsTerminal() {
		return repository.ErrUpdateFailed
	}
	asset.Status = status
	if durationSeconds > 0 {
		asset.DurationSeconds = durationSeconds
	}
	if thumbnailURL != "" {
		asset.ThumbnailURL = thumbnailURL
	}
	asset.UpdatedAt = time.Now()
	return nil
}

type fakeStorage struct {
	mu       sync.Mutex
	uploads  map[string]int64 // objectKey -> bytes received
	deleted  []string
	presigns []string

	uploadErr  error
	presignErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string]int64)}
}

func (s *fakeStorage) UploadObject(ctx context.Context, objectKey string, contentType string, body io.Reader, size int64) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.uploads[objectKey] = n
	s.mu.Unlock()
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	url := "https://s3.test/" + objectKey + "?signed"
	s.mu.Lock()
	s.presigns = append(s.presigns, url)
	s.mu.Unlock()
	return url, nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, objectKey)
	s.mu.Unlock()
	return nil
}

type fakeRegistrar struct {
	video        *videohost.Video
	err          error
	gotTitle     string
	gotSourceURL string
}

func (f *fakeRegistrar) RegisterVideo(ctx context.Context, title, sourceURL string) (*videohost.Video, error) {
	f.gotTitle = title
	f.gotSourceURL = sourceURL
	if f.err != nil {
		return nil, f.err
	}
	return f.video, nil
}

type fakeModuleRepo struct {
	modules map[primitive.ObjectID]*domain.CourseModule
}

func newFakeModuleRepo() *fakeModuleRepo {
	return &fakeModuleRepo{modules: make(map[primitive.ObjectID]*domain.CourseModule)}
}

func (r *fakeModuleRepo) Create(ctx context.Context, module *domain.CourseModule) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *module
	stored.ID = id
	r.modules[id] = &stored
	return id, nil
}

func (r *fakeModuleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CourseModule, error) {
	module, ok := r.modules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *module
	return &copied, nil
}

func (r *fakeModuleRepo) GetByFormationID(ctx context.Context, formationID primitive.ObjectID) ([]domain.CourseModule, error) {
	var out []domain.CourseModule
	for _, m := range r.modules {
		if m.FormationID == formationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeModuleRepo) CountByFormationID(ctx context.Context, formationID primitive.ObjectID) (int64, error) {
	var n int64
	for _, m := range r.modules {
		if m.FormationID == formationID {
			n++
		}
	}
	return n, nil
}

type fakeLessonRepo struct {
	lessons   map[primitive.ObjectID]*domain.Lesson
	createErr error
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: make(map[primitive.ObjectID]*domain.Lesson)}
}

func (r *fakeLessonRepo) Create(ctx context.Context, lesson *domain.Lesson) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	for _, existing := range r.lessons {
		if existing.ModuleID == lesson.ModuleID && existing.Title == lesson.Title {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	stored := *lesson
	stored.ID = id
	r.lessons[id] = &stored
	return id, nil
}

func (r *fakeLessonRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	lesson, ok := r.lessons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *lesson
	return &copied, nil
}

func (r *fakeLessonRepo) GetByModuleID(ctx context.Context, moduleID primitive.ObjectID) ([]domain.Lesson, error) {
	var out []domain.Lesson
	for _, l := range r.lessons {
		if l.ModuleID == moduleID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLessonRepo) CountByModuleID(ctx context.Context, moduleID primitive.ObjectID) (int64, error) {
	var n int64
	for _, l := range r.lessons {
		if l.ModuleID == moduleID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLessonRepo) ExistsByModuleAndTitle(ctx context.Context, moduleID primitive.ObjectID, title string) (bool, error) {
	for _, l := range r.lessons {
		if l.ModuleID == moduleID && l.Title == title {
			return true, nil
		}
	}
	return false, nil
}
