package transcode

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/repository"
	"weokto/course-app/internal/videohost"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memAssetRepo struct {
	mu     sync.Mutex
	assets map[string]*domain.VideoAsset // keyed by remoteAssetId
}

func newMemAssetRepo(assets ...*domain.VideoAsset) *memAssetRepo {
	repo := &memAssetRepo{assets: make(map[string]*domain.VideoAsset)}
	for _, a := range assets {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		repo.assets[a.RemoteAssetID] = a
	}
	return repo
}

func (r *memAssetRepo) Create(ctx context.Context, asset *domain.VideoAsset) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *asset
	stored.ID = id
	r.assets[stored.RemoteAssetID] = &stored
	return id, nil
}

func (r *memAssetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAssetRepo) GetByRemoteAssetID(ctx context.Context, remoteAssetID string) (*domain.VideoAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[remoteAssetID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *asset
	return &copied, nil
}

func (r *memAssetRepo) ListPending(ctx context.Context, limit int64) ([]domain.VideoAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []domain.VideoAsset
	for _, a := range r.assets {
		if !a.Status.IsTerminal() && int64(len(pending)) < limit {
			pending = append(pending, *a)
		}
	}
	return pending, nil
}

// UpdateStatus carries the same terminal guard as the Mongo implementation.
func (r *memAssetRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssetStatus, durationSeconds int, thumbnailURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.ID == id {
			if a.Status.IsTerminal() {
				return repository.ErrUpdateFailed
			}
			a.Status = status
			if durationSeconds > 0 {
				a.DurationSeconds = durationSeconds
			}
			if thumbnailURL != "" {
				a.ThumbnailURL = thumbnailURL
			}
			return nil
		}
	}
	return repository.ErrUpdateFailed
}

type memProvider struct {
	mu     sync.Mutex
	videos map[string]*videohost.Video
	errs   map[string]error
	calls  int
}

func (p *memProvider) GetVideo(ctx context.Context, videoID string) (*videohost.Video, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if err, ok := p.errs[videoID]; ok {
		return nil, err
	}
	video, ok := p.videos[videoID]
	if !ok {
		return nil, videohost.ErrVideoNotFound
	}
	copied := *video
	return &copied, nil
}

func TestReconcilePromotesFinishedAssets(t *testing.T) {
	repo := newMemAssetRepo(
		&domain.VideoAsset{RemoteAssetID: "vid-1", Status: domain.AssetStatusProcessing},
		&domain.VideoAsset{RemoteAssetID: "vid-2", Status: domain.AssetStatusProcessing},
	)
	provider := &memProvider{videos: map[string]*videohost.Video{
		"vid-1": {VideoID: "vid-1", Status: "ready", DurationSeconds: 312, ThumbnailURL: "https://cdn/t1.jpg"},
		"vid-2": {VideoID: "vid-2", Status: "encoding"},
	}}
	poller := NewPoller(repo, provider, time.Second, 50)

	poller.reconcile(context.Background())

	done, err := repo.GetByRemoteAssetID(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusReady, done.Status)
	assert.Equal(t, 312, done.DurationSeconds)
	assert.Equal(t, "https://cdn/t1.jpg", done.ThumbnailURL)

	still, err := repo.GetByRemoteAssetID(context.Background(), "vid-2")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusProcessing, still.Status, "unknown provider status stays non-terminal")
}

func TestReconcileSkipsTerminalAssets(t *testing.T) {
	repo := newMemAssetRepo(
		&domain.VideoAsset{RemoteAssetID: "vid-done", Status: domain.AssetStatusReady},
		&domain.VideoAsset{RemoteAssetID: "vid-failed", Status: domain.AssetStatusError},
	)
	provider := &memProvider{videos: map[string]*videohost.Video{}}
	poller := NewPoller(repo, provider, time.Second, 50)

	poller.reconcile(context.Background())
	assert.Zero(t, provider.calls, "terminal assets are not re-queried")
}

func TestReconcileMarksLostVideosAsError(t *testing.T) {
	repo := newMemAssetRepo(
		&domain.VideoAsset{RemoteAssetID: "vid-gone", Status: domain.AssetStatusProcessing},
	)
	provider := &memProvider{videos: map[string]*videohost.Video{}}
	poller := NewPoller(repo, provider, time.Second, 50)

	poller.reconcile(context.Background())

	asset, err := repo.GetByRemoteAssetID(context.Background(), "vid-gone")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusError, asset.Status)
}

func TestReconcileContinuesPastProviderErrors(t *testing.T) {
	repo := newMemAssetRepo(
		&domain.VideoAsset{RemoteAssetID: "vid-a", Status: domain.AssetStatusProcessing},
		&domain.VideoAsset{RemoteAssetID: "vid-b", Status: domain.AssetStatusProcessing},
	)
	provider := &memProvider{
		videos: map[string]*videohost.Video{
			"vid-b": {VideoID: "vid-b", Status: "ready"},
		},
		errs: map[string]error{"vid-a": errors.New("provider timeout")},
	}
	poller := NewPoller(repo, provider, time.Second, 50)

	poller.reconcile(context.Background())

	a, _ := repo.GetByRemoteAssetID(context.Background(), "vid-a")
	assert.Equal(t, domain.AssetStatusProcessing, a.Status, "a transient failure leaves the asset untouched")
	b, _ := repo.GetByRemoteAssetID(context.Background(), "vid-b")
	assert.Equal(t, domain.AssetStatusReady, b.Status)
}

func TestRunStopsOnCancellation(t *testing.T) {
	repo := newMemAssetRepo()
	provider := &memProvider{videos: map[string]*videohost.Video{}}
	poller := NewPoller(repo, provider, time.Millisecond, 50)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}
