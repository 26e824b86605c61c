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

const formationCollectionName = "formations"

// mongoFormationRepository implements repository.FormationRepository
type mongoFormationRepository struct {
	collection *mongo.Collection
}

// NewMongoFormationRepository creates a new Formation repository backed by MongoDB.
func NewMongoFormationRepository(db *mongo.Database) repository.FormationRepository {
	return &mongoFormationRepository{
		collection: db.Collection(formationCollectionName),
	}
}

// Create inserts a new formation into the database.
func (r *mongoFormationRepository) Create(ctx context.Context, formation *domain.Formation) (primitive.ObjectID, error) {
	if formation.SupplierID == primitive.NilObjectID || formation.Name == "" {
		return primitive.NilObjectID, errors.New("formation requires supplierId and name")
	}

	formation.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	formation.CreatedAt = now
	formation.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, formation)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a formation by its ID.
func (r *mongoFormationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Formation, error) {
	var formation domain.Formation
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&formation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &formation, nil
}

// GetBySupplierID retrieves all formations owned by a supplier, newest first.
func (r *mongoFormationRepository) GetBySupplierID(ctx context.Context, supplierID primitive.ObjectID) ([]domain.Formation, error) {
	filter := bson.M{"supplierId": supplierID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var formations []domain.Formation
	if err := cursor.All(ctx, &formations); err != nil {
		return nil, err
	}
	return formations, nil
}

// Update saves changes to an existing formation.
func (r *mongoFormationRepository) Update(ctx context.Context, formation *domain.Formation) error {
	if formation.ID == primitive.NilObjectID {
		return errors.New("formation ID is required for update")
	}

	formation.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": formation.ID}
	update := bson.M{"$set": bson.M{
		"name":        formation.Name,
		"description": formation.Description,
		"isPublished": formation.IsPublished,
		"updatedAt":   formation.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureFormationIndexes creates necessary indexes for the formations collection.
func EnsureFormationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
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
