package ingest

import (
	"context"
	"weokto/course-app/internal/domain"
)

// Events receives workflow notifications. All fields are optional.
type Events struct {
	// UploadProgress is called with the integer upload percentage.
	UploadProgress ProgressFunc
	// StatusChanged is called whenever the tracked asset status changes,
	// including the initial status reported by the upload response.
	StatusChanged func(status domain.AssetStatus)
}

// Workflow runs the full ingestion sequence: validate, upload, track,
// compose. Each stage gates the next; the workflow cannot skip stages and
// no two stages overlap for the same asset. Cancelling ctx stops the
// workflow at its current suspension point, including mid-upload.
type Workflow struct {
	client *Client
	policy PollPolicy
	events Events
}

// NewWorkflow creates a workflow around an API client.
func NewWorkflow(client *Client, policy PollPolicy, events Events) *Workflow {
	return &Workflow{
		client: client,
		policy: policy,
		events: events,
	}
}

// Run executes the workflow for one selected asset and one lesson draft.
// The asset body is consumed; the draft is retained by the caller, so a
// failed submission can be retried via RetrySubmit without re-uploading.
func (w *Workflow) Run(ctx context.Context, asset *SelectedAsset, moduleID string, draft LessonDraft) (*Lesson, *RemoteAsset, error) {
	// Stage 1: local validation, before any network cost.
	if err := asset.Validate(); err != nil {
		return nil, nil, err
	}

	if draft.Title == "" {
		draft.Title = asset.DefaultTitle()
	}

	// Stage 2: single multipart upload with progress.
	remote, err := w.client.Upload(ctx, asset, draft.Title, w.events.UploadProgress)
	if err != nil {
		return nil, nil, err
	}
	w.notifyStatus(remote.Status)

	// Stage 3: poll until the remote transcode is terminal.
	tracker := NewTracker(w.client, w.policy)
	lastStatus := remote.Status
	remote, err = tracker.Track(ctx, remote)
	if remote != nil && remote.Status != lastStatus {
		w.notifyStatus(remote.Status)
	}
	if err != nil {
		return nil, remote, err
	}

	// Stage 4: submit the lesson metadata. The composer enforces the
	// ready gate, so a transcode that ended in error stops here.
	lesson, err := NewComposer(w.client).Submit(ctx, moduleID, draft, remote)
	if err != nil {
		return nil, remote, err
	}
	return lesson, remote, nil
}

// RetrySubmit re-attempts only the final submission stage against an
// already-tracked asset. Used after a server-side rejection (e.g. a
// duplicate title) once the draft has been corrected.
func (w *Workflow) RetrySubmit(ctx context.Context, moduleID string, draft LessonDraft, asset *RemoteAsset) (*Lesson, error) {
	return NewComposer(w.client).Submit(ctx, moduleID, draft, asset)
}

func (w *Workflow) notifyStatus(status domain.AssetStatus) {
	if w.events.StatusChanged != nil {
		w.events.StatusChanged(status)
	}
}
