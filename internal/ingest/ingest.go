// Package ingest implements the client side of the video lesson ingestion
// workflow: validate a local file, upload it with progress, poll until the
// remote transcode reaches a terminal state, then submit the lesson metadata.
// Stages are strictly sequenced; none is skipped and none overlaps another
// for the same asset.
package ingest

import (
	"weokto/course-app/internal/domain"
)

// RemoteAsset is the client-side view of an uploaded video as reported by
// the ingestion endpoint. The identifiers are immutable once assigned; only
// Status changes, and only through polling.
type RemoteAsset struct {
	RemoteAssetID   string             `json:"remoteAssetId"`
	RemoteLibraryID string             `json:"remoteLibraryId"`
	ThumbnailURL    string             `json:"thumbnailUrl,omitempty"`
	Status          domain.AssetStatus `json:"status"`
	Title           string             `json:"title"`
	DurationSeconds int                `json:"durationSeconds,omitempty"`
}

// LessonDraft is the user-entered metadata pending submission. It stays
// populated across failed submissions so the user can retry without
// re-uploading the video.
type LessonDraft struct {
	Title       string
	Description string
	IsFree      bool
}

// Lesson is the created lesson record as returned by the server.
type Lesson struct {
	ID            string `json:"id"`
	ModuleID      string `json:"moduleId"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	IsFree        bool   `json:"isFree"`
	Position      int    `json:"position"`
	RemoteAssetID string `json:"remoteAssetId"`
	VideoDuration int    `json:"videoDuration,omitempty"`
}
