package mongo

import (
	"context"
	"errors"
	"log"
	"time"
	"weokto/course-app/internal/domain"
	"weokto/course-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const courseModuleCollectionName = "course_modules"

// mongoCourseModuleRepository implements repository.CourseModuleRepository
type mongoCourseModuleRepository struct {
	collection *mongo.Collection
}

// NewMongoCourseModuleRepository creates a new CourseModule repository backed by MongoDB.
func NewMongoCourseModuleRepository(db *mongo.Database) repository.CourseModuleRepository {
	return &mongoCourseModuleRepository{
		collection: db.Collection(courseModuleCollectionName),
	}
}

// Create inserts a new course module into the database.
func (r *mongoCourseModuleRepository) Create(ctx context.Context, module *domain.CourseModule) (primitive.ObjectID, error) {
	if module.FormationID == primitive.NilObjectID ||
		module.SupplierID == primitive.NilObjectID ||
		module.Title == "" {
		return primitive.NilObjectID, errors.New("course module requires formationId, supplierId and title")
	}

	module.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	module.CreatedAt = now
	module.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, module)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a course module by its ID.
func (r *mongoCourseModuleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CourseModule, error) {
	var module domain.CourseModule
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&module)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &module, nil
}

// GetByFormationID retrieves all modules of a formation ordered by position.
func (r *mongoCourseModuleRepository) GetByFormationID(ctx context.Context, formationID primitive.ObjectID) ([]domain.CourseModule, error) {
	filter := bson.M{"formationId": formationID}
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []domain.CourseModule
	if err := cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// CountByFormationID returns the number of modules in a formation.
// Used to assign the position of a newly created module.
func (r *mongoCourseModuleRepository) CountByFormationID(ctx context.Context, formationID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"formationId": formationID})
}

// EnsureCourseModuleIndexes creates necessary indexes for the course_modules collection.
func EnsureCourseModuleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "formationId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "supplierId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
