package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseModule is a chapter within a Formation. Lessons attach to a module.
type CourseModule struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormationID primitive.ObjectID `bson:"formationId" json:"formationId"`
	SupplierID  primitive.ObjectID `bson:"supplierId" json:"supplierId"` // Denormalized for ownership checks
	Title       string             `bson:"title" json:"title"`
	Position    int                `bson:"position" json:"position"` // Display order within the formation
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
