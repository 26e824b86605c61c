package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bounds enforced on lesson metadata. The client validates these as a
// fast path; the service re-validates because the server is the source
// of truth.
const (
	LessonTitleMinLen       = 3
	LessonTitleMaxLen       = 100
	LessonDescriptionMaxLen = 500
)

// Lesson is a video lesson within a course module. It binds user-entered
// metadata to a finished VideoAsset.
type Lesson struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ModuleID        primitive.ObjectID `bson:"moduleId" json:"moduleId"`
	SupplierID      primitive.ObjectID `bson:"supplierId" json:"supplierId"` // Denormalized for ownership checks
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	IsFree          bool               `bson:"isFree" json:"isFree"` // Free preview lessons are visible without purchase
	Position        int                `bson:"position" json:"position"`
	RemoteAssetID   string             `bson:"remoteAssetId" json:"remoteAssetId"`
	RemoteLibraryID string             `bson:"remoteLibraryId" json:"remoteLibraryId"`
	ThumbnailURL    string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	VideoStatus     AssetStatus        `bson:"videoStatus" json:"videoStatus"`
	VideoDuration   int                `bson:"videoDuration,omitempty" json:"videoDuration,omitempty"` // Seconds
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
