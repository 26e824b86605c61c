package ingest

import (
	"context"
	"errors"
	"log"
	"time"
	"weokto/course-app/internal/domain"
)

// ErrProcessingTimeout is returned when the remote transcode never reaches a
// terminal state within the polling budget. Distinct from transport errors
// so callers can message it properly instead of hanging forever.
var ErrProcessingTimeout = errors.New("processing timed out")

// PollPolicy bounds the status polling loop. The interval grows by Factor
// after each attempt up to MaxInterval; after MaxAttempts queries without a
// terminal state the tracker gives up with ErrProcessingTimeout.
type PollPolicy struct {
	Interval    time.Duration // Initial delay between status queries
	MaxInterval time.Duration // Upper bound for the backed-off delay
	Factor      float64       // Backoff multiplier, >= 1
	MaxAttempts int           // Total status queries before giving up
	PollTimeout time.Duration // Per-query deadline, 0 for none
}

// DefaultPollPolicy matches the 5-second cadence of the original workflow
// but bounded: with backoff to 30s the budget covers roughly 45 minutes of
// remote processing before giving up.
var DefaultPollPolicy = PollPolicy{
	Interval:    5 * time.Second,
	MaxInterval: 30 * time.Second,
	Factor:      1.5,
	MaxAttempts: 100,
	PollTimeout: 15 * time.Second,
}

// StatusQuerier is the slice of Client the tracker needs.
type StatusQuerier interface {
	AssetStatus(ctx context.Context, remoteAssetID string) (domain.AssetStatus, *RemoteAsset, error)
}

// Tracker brings a RemoteAsset to a terminal status by polling the status
// endpoint. One tracker run owns exactly one polling loop; the loop stops
// the instant a terminal state is observed or ctx is cancelled.
type Tracker struct {
	client StatusQuerier
	policy PollPolicy
}

// NewTracker creates a tracker with the given policy. Zero policy fields
// fall back to DefaultPollPolicy values.
func NewTracker(client StatusQuerier, policy PollPolicy) *Tracker {
	if policy.Interval <= 0 {
		policy.Interval = DefaultPollPolicy.Interval
	}
	if policy.MaxInterval < policy.Interval {
		policy.MaxInterval = policy.Interval
	}
	if policy.Factor < 1 {
		policy.Factor = 1
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPollPolicy.MaxAttempts
	}
	return &Tracker{client: client, policy: policy}
}

// Track polls until the asset reaches a terminal status and returns the
// updated asset. If the asset's current status is already terminal, no
// status query is issued at all.
//
// A failed status query counts as an attempt and polling continues; only
// cancellation or budget exhaustion aborts the loop.
func (t *Tracker) Track(ctx context.Context, asset *RemoteAsset) (*RemoteAsset, error) {
	if asset.Status.IsTerminal() {
		return asset, nil
	}

	delay := t.policy.Interval
	timer := time.NewTimer(delay)
	defer timer.Stop() // Released on every exit path

	for attempt := 1; attempt <= t.policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return asset, ctx.Err()
		case <-timer.C:
		}

		status, update, err := t.poll(ctx, asset.RemoteAssetID)
		if err != nil {
			if ctx.Err() != nil {
				return asset, ctx.Err()
			}
			log.Printf("WARN: status query %d for asset %s failed: %v", attempt, asset.RemoteAssetID, err)
		} else {
			asset.Status = status
			if update != nil {
				if update.ThumbnailURL != "" {
					asset.ThumbnailURL = update.ThumbnailURL
				}
				if update.DurationSeconds > 0 {
					asset.DurationSeconds = update.DurationSeconds
				}
			}
			if status.IsTerminal() {
				return asset, nil
			}
		}

		delay = t.nextDelay(delay)
		timer.Reset(delay)
	}

	return asset, ErrProcessingTimeout
}

func (t *Tracker) poll(ctx context.Context, remoteAssetID string) (domain.AssetStatus, *RemoteAsset, error) {
	pollCtx, cancel := withTimeout(ctx, t.policy.PollTimeout)
	defer cancel()
	return t.client.AssetStatus(pollCtx, remoteAssetID)
}

func (t *Tracker) nextDelay(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * t.policy.Factor)
	if next > t.policy.MaxInterval {
		next = t.policy.MaxInterval
	}
	return next
}
