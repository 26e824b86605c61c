package ingest

import (
	"context"
	"errors"
	"testing"
	"time"
	"weokto/course-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStatuses plays back a fixed sequence of status responses, one per
// query. Once the script is exhausted the last entry repeats.
type scriptedStatuses struct {
	script []scriptedStatus
	calls  int
}

type scriptedStatus struct {
	status   domain.AssetStatus
	update   *RemoteAsset
	err      error
}

func (s *scriptedStatuses) AssetStatus(ctx context.Context, remoteAssetID string) (domain.AssetStatus, *RemoteAsset, error) {
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	entry := s.script[idx]
	return entry.status, entry.update, entry.err
}

func fastPolicy(maxAttempts int) PollPolicy {
	return PollPolicy{
		Interval:    time.Millisecond,
		MaxInterval: 2 * time.Millisecond,
		Factor:      1.5,
		MaxAttempts: maxAttempts,
	}
}

func TestTrackSkipsPollingWhenAlreadyTerminal(t *testing.T) {
	for _, status := range []domain.AssetStatus{domain.AssetStatusReady, domain.AssetStatusError} {
		fake := &scriptedStatuses{script: []scriptedStatus{{status: domain.AssetStatusReady}}}
		tracker := NewTracker(fake, fastPolicy(5))

		got, err := tracker.Track(context.Background(), &RemoteAsset{RemoteAssetID: "ra-1", Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
		assert.Zero(t, fake.calls, "terminal status %s must not trigger any query", status)
	}
}

func TestTrackPollsUntilReadyThenStops(t *testing.T) {
	fake := &scriptedStatuses{script: []scriptedStatus{
		{status: domain.AssetStatusProcessing},
		{status: domain.AssetStatusProcessing},
		{status: domain.AssetStatusReady, update: &RemoteAsset{ThumbnailURL: "https://cdn/thumb.jpg", DurationSeconds: 93}},
	}}
	tracker := NewTracker(fake, fastPolicy(10))

	asset := &RemoteAsset{RemoteAssetID: "ra-1", Status: domain.AssetStatusProcessing}
	got, err := tracker.Track(context.Background(), asset)
	require.NoError(t, err)

	assert.Equal(t, domain.AssetStatusReady, got.Status)
	assert.Equal(t, "https://cdn/thumb.jpg", got.ThumbnailURL)
	assert.Equal(t, 93, got.DurationSeconds)
	assert.Equal(t, 3, fake.calls, "polling must stop at the first terminal observation")
}

func TestTrackStopsOnErrorStatus(t *testing.T) {
	fake := &scriptedStatuses{script: []scriptedStatus{
		{status: domain.AssetStatusProcessing},
		{status: domain.AssetStatusError},
	}}
	tracker := NewTracker(fake, fastPolicy(10))

	got, err := tracker.Track(context.Background(), &RemoteAsset{RemoteAssetID: "ra-1", Status: domain.AssetStatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusError, got.Status)
	assert.Equal(t, 2, fake.calls)
}

func TestTrackGivesUpAfterBudget(t *testing.T) {
	fake := &scriptedStatuses{script: []scriptedStatus{{status: domain.AssetStatusProcessing}}}
	tracker := NewTracker(fake, fastPolicy(4))

	got, err := tracker.Track(context.Background(), &RemoteAsset{RemoteAssetID: "ra-1", Status: domain.AssetStatusProcessing})
	require.ErrorIs(t, err, ErrProcessingTimeout)
	assert.Equal(t, 4, fake.calls)
	assert.Equal(t, domain.AssetStatusProcessing, got.Status)
}

func TestTrackFailedQueryCountsAsAttempt(t *testing.T) {
	fake := &scriptedStatuses{script: []scriptedStatus{
		{err: errors.New("connection refused")},
		{status: domain.AssetStatusReady},
	}}
	tracker := NewTracker(fake, fastPolicy(10))

	got, err := tracker.Track(context.Background(), &RemoteAsset{RemoteAssetID: "ra-1", Status: domain.AssetStatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusReady, got.Status)
	assert.Equal(t, 2, fake.calls)
}

func TestTrackRespectsCancellation(t *testing.T) {
	fake := &scriptedStatuses{script: []scriptedStatus{{status: domain.AssetStatusProcessing}}}
	tracker := NewTracker(fake, PollPolicy{Interval: time.Hour, MaxAttempts: 5})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := tracker.Track(ctx, &RemoteAsset{RemoteAssetID: "ra-1", Status: domain.AssetStatusProcessing})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fake.calls, "no query should fire before the first interval elapses")
}

func TestNewTrackerNormalizesPolicy(t *testing.T) {
	tracker := NewTracker(&scriptedStatuses{script: []scriptedStatus{{status: domain.AssetStatusReady}}}, PollPolicy{})
	assert.Equal(t, DefaultPollPolicy.Interval, tracker.policy.Interval)
	assert.Equal(t, DefaultPollPolicy.MaxAttempts, tracker.policy.MaxAttempts)
	assert.GreaterOrEqual(t, tracker.policy.MaxInterval, tracker.policy.Interval)
	assert.GreaterOrEqual(t, tracker.policy.Factor, 1.0)
}
