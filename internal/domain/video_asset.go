package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxVideoBytes is the upper bound on accepted video files (2 GiB).
// Enforced client-side as a fast path and again by the ingestion endpoint;
// the server remains the source of truth.
const MaxVideoBytes = 2 * 1024 * 1024 * 1024

// Accepted video MIME types.
var allowedVideoContentTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},
}

// IsAllowedVideoContentType reports whether the declared MIME type is accepted.
func IsAllowedVideoContentType(contentType string) bool {
	_, ok := allowedVideoContentTypes[contentType]
	return ok
}

// AssetStatus is the processing state of a video at the transcode provider.
type AssetStatus string

const (
	AssetStatusProcessing AssetStatus = "processing"
	AssetStatusReady      AssetStatus = "ready"
	AssetStatusError      AssetStatus = "error"
)

// IsTerminal reports whether no further automatic transition is expected.
// Ready and error are terminal; anything else counts as still processing.
func (s AssetStatus) IsTerminal() bool {
	return s == AssetStatusReady || s == AssetStatusError
}

// VideoAsset stores metadata about a video uploaded by a supplier.
// The original file resides in S3; the playable renditions live at the
// transcode provider, identified by RemoteAssetID/RemoteLibraryID.
type VideoAsset struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SupplierID      primitive.ObjectID `bson:"supplierId" json:"supplierId"` // Who uploaded the video
	RemoteAssetID   string             `bson:"remoteAssetId" json:"remoteAssetId"`     // Provider-assigned video id
	RemoteLibraryID string             `bson:"remoteLibraryId" json:"remoteLibraryId"` // Provider library/bucket id
	S3ObjectKey     string             `bson:"s3ObjectKey" json:"-"`           // Key of the original in the S3 bucket - internal use
	FileName        string             `bson:"fileName" json:"fileName"`       // Original filename provided by the supplier
	ContentType     string             `bson:"contentType" json:"contentType"` // MIME type (e.g., "video/mp4")
	Size            int64              `bson:"size" json:"size"`               // File size in bytes
	Title           string             `bson:"title" json:"title"`
	Status          AssetStatus        `bson:"status" json:"status"`
	DurationSeconds int                `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"` // Known once the provider reports ready
	ThumbnailURL    string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	UploadedAt      time.Time          `bson:"uploadedAt" json:"uploadedAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
