package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"weokto/course-app/internal/domain"
)

// Field-level validation failures. These are reported before any network
// submission is attempted.
var (
	ErrTitleLength       = fmt.Errorf("title must be between %d and %d characters", domain.LessonTitleMinLen, domain.LessonTitleMaxLen)
	ErrDescriptionLength = fmt.Errorf("description must be at most %d characters", domain.LessonDescriptionMaxLen)

	// ErrAssetNotReady is the composer's gate: submission is refused while
	// the remote asset has not reached the ready state.
	ErrAssetNotReady = errors.New("video is not ready")
)

// Validate checks the draft bounds client-side. This is a fast path only;
// the server re-validates authoritatively on submission.
func (d LessonDraft) Validate() error {
	title := strings.TrimSpace(d.Title)
	if len(title) < domain.LessonTitleMinLen || len(title) > domain.LessonTitleMaxLen {
		return ErrTitleLength
	}
	if len(d.Description) > domain.LessonDescriptionMaxLen {
		return ErrDescriptionLength
	}
	return nil
}

// LessonCreator is the slice of Client the composer needs.
type LessonCreator interface {
	CreateLesson(ctx context.Context, moduleID string, draft LessonDraft, asset *RemoteAsset) (*Lesson, error)
}

// Composer validates and submits the final lesson metadata once the asset
// is usable.
type Composer struct {
	client LessonCreator
}

// NewComposer creates a lesson composer.
func NewComposer(client LessonCreator) *Composer {
	return &Composer{client: client}
}

// CanSubmit reports whether the submission gate is open: the asset must be
// in the ready state, nothing else.
func (c *Composer) CanSubmit(asset *RemoteAsset) bool {
	return asset != nil && asset.Status == domain.AssetStatusReady
}

// Submit validates the draft and creates the lesson record. On failure the
// draft is untouched, so the caller can correct and resubmit without
// re-uploading the video. Exactly one lesson record results from a
// successful submission; there is no automatic retry.
func (c *Composer) Submit(ctx context.Context, moduleID string, draft LessonDraft, asset *RemoteAsset) (*Lesson, error) {
	if !c.CanSubmit(asset) {
		return nil, ErrAssetNotReady
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return c.client.CreateLesson(ctx, moduleID, draft, asset)
}
