package transcode

import (
	"context"
	"errors"
	"log"
	"time"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/repository"
	"weokto/course-app/internal/videohost"
)

// StatusFetcher is the slice of the provider client the poller needs.
type StatusFetcher interface {
	GetVideo(ctx context.Context, videoID string) (*videohost.Video, error)
}

// Poller reconciles pending VideoAsset records against the transcode
// provider. The client-side workflow polls our status endpoint; this loop is
// what keeps that endpoint fresh without proxying every request upstream.
type Poller struct {
	assetRepo repository.VideoAssetRepository
	provider  StatusFetcher
	interval  time.Duration
	batchSize int64
}

// NewPoller creates a transcode status poller.
func NewPoller(assetRepo repository.VideoAssetRepository, provider StatusFetcher, interval time.Duration, batchSize int64) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Poller{
		assetRepo: assetRepo,
		provider:  provider,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run executes the reconciliation loop until ctx is cancelled. Call it from
// a dedicated goroutine; it returns once the context is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Printf("INFO: Transcode poller started (interval %s)", p.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: Transcode poller stopped.")
			return
		case <-ticker.C:
			p.reconcile(ctx)
		}
	}
}

// reconcile fetches provider state for every pending asset and persists
// changes. Terminal states are guarded at the repository level, so a stale
// provider response can never move an asset out of ready/error.
func (p *Poller) reconcile(ctx context.Context) {
	pending, err := p.assetRepo.ListPending(ctx, p.batchSize)
	if err != nil {
		log.Printf("ERROR: Transcode poller could not list pending assets: %v", err)
		return
	}

	for _, asset := range pending {
		video, err := p.provider.GetVideo(ctx, asset.RemoteAssetID)
		if err != nil {
			if errors.Is(err, videohost.ErrVideoNotFound) {
				// Provider lost the video; mark it failed so the supplier can re-upload.
				if updErr := p.assetRepo.UpdateStatus(ctx, asset.ID, domain.AssetStatusError, 0, ""); updErr != nil {
					log.Printf("ERROR: Failed to mark asset %s as error: %v", asset.ID.Hex(), updErr)
				}
				continue
			}
			log.Printf("ERROR: Transcode poller could not fetch asset %s: %v", asset.RemoteAssetID, err)
			continue
		}

		status := video.AssetStatus()
		if status == asset.Status && video.DurationSeconds == asset.DurationSeconds {
			continue // No change
		}

		if err := p.assetRepo.UpdateStatus(ctx, asset.ID, status, video.DurationSeconds, video.ThumbnailURL); err != nil {
			log.Printf("ERROR: Failed to update status of asset %s: %v", asset.ID.Hex(), err)
			continue
		}
		if status.IsTerminal() {
			log.Printf("INFO: Asset %s reached terminal status %q", asset.RemoteAssetID, status)
		}
	}
}
