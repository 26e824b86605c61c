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

const lessonCollectionName = "lessons"

// mongoLessonRepository implements repository.LessonRepository
type mongoLessonRepository struct {
	collection *mongo.Collection
}

// NewMongoLessonRepository creates a new Lesson repository backed by MongoDB.
func NewMongoLessonRepository(db *mongo.Database) repository.LessonRepository {
	return &mongoLessonRepository{
		collection: db.Collection(lessonCollectionName),
	}
}

// Create inserts a new lesson into the database.
func (r *mongoLessonRepository) Create(ctx context.Context, lesson *domain.Lesson) (primitive.ObjectID, error) {
	if lesson.ModuleID == primitive.NilObjectID ||
		lesson.SupplierID == primitive.NilObjectID ||
		lesson.Title == "" ||
		lesson.RemoteAssetID == "" {
		return primitive.NilObjectID, errors.New("lesson requires moduleId, supplierId, title and remoteAssetId")
	}

	lesson.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, lesson)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a lesson by its ID.
func (r *mongoLessonRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lesson, error) {
	var lesson domain.Lesson
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&lesson)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

// GetByModuleID retrieves all lessons of a course module ordered by position.
func (r *mongoLessonRepository) GetByModuleID(ctx context.Context, moduleID primitive.ObjectID) ([]domain.Lesson, error) {
	filter := bson.M{"moduleId": moduleID}
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lessons []domain.Lesson
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// CountByModuleID returns the number of lessons in a module.
// Used to assign the position of a newly created lesson.
func (r *mongoLessonRepository) CountByModuleID(ctx context.Context, moduleID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"moduleId": moduleID})
}

// ExistsByModuleAndTitle reports whether a lesson with the given title already
// exists within the module. Titles must be unique per module.
func (r *mongoLessonRepository) ExistsByModuleAndTitle(ctx context.Context, moduleID primitive.ObjectID, title string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"moduleId": moduleID, "title": title})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EnsureLessonIndexes creates necessary indexes for the lessons collection.
func EnsureLessonIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Lesson titles are unique within a module
			Keys:    bson.D{{Key: "moduleId", Value: 1}, {Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "moduleId", Value: 1}, {Key: "position", Value: 1}},
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
