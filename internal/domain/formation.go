package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Formation represents a course owned by a supplier. Lessons are grouped
// into CourseModules, which belong to a Formation.
type Formation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SupplierID  primitive.ObjectID `bson:"supplierId" json:"supplierId"` // Owner of the formation
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
