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

const videoAssetCollectionName = "video_assets"

// mongoVideoAssetRepository implements repository.VideoAssetRepository
type mongoVideoAssetRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoAssetRepository creates a new VideoAsset repository backed by MongoDB.
func NewMongoVideoAssetRepository(db *mongo.Database) repository.VideoAssetRepository {
	return &mongoVideoAssetRepository{
		collection: db.Collection(videoAssetCollectionName),
	}
}

// Create inserts new video asset metadata into the database.
func (r *mongoVideoAssetRepository) Create(ctx context.Context, asset *domain.VideoAsset) (primitive.ObjectID, error) {
	if asset.SupplierID == primitive.NilObjectID ||
		asset.RemoteAssetID == "" ||
		asset.RemoteLibraryID == "" ||
		asset.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("video asset requires supplierId, remoteAssetId, remoteLibraryId and s3ObjectKey")
	}

	asset.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	asset.UploadedAt = now
	asset.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, asset)
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

// GetByID retrieves video asset metadata by its ID.
func (r *mongoVideoAssetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoAsset, error) {
	var asset domain.VideoAsset
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// GetByRemoteAssetID retrieves video asset metadata by the provider-assigned id.
func (r *mongoVideoAssetRepository) GetByRemoteAssetID(ctx context.Context, remoteAssetID string) (*domain.VideoAsset, error) {
	var asset domain.VideoAsset
	filter := bson.M{"remoteAssetId": remoteAssetID}

	err := r.collection.FindOne(ctx, filter).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// ListPending retrieves assets whose status is not yet terminal, oldest first,
// so the transcode poller can reconcile them against the provider.
func (r *mongoVideoAssetRepository) ListPending(ctx context.Context, limit int64) ([]domain.VideoAsset, error) {
	filter := bson.M{"status": bson.M{"$nin": bson.A{
		string(domain.AssetStatusReady),
		string(domain.AssetStatusError),
	}}}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "uploadedAt", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []domain.VideoAsset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// UpdateStatus persists a status change reported by the transcode provider.
// Terminal states are never overwritten: a second writer observing stale
// provider data must not move an asset out of ready/error.
func (r *mongoVideoAssetRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssetStatus, durationSeconds int, thumbnailURL string) error {
	filter := bson.M{
		"_id": id,
		"status": bson.M{"$nin": bson.A{
			string(domain.AssetStatusReady),
			string(domain.AssetStatusError),
		}},
	}

	set := bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}
	if durationSeconds > 0 {
		set["durationSeconds"] = durationSeconds
	}
	if thumbnailURL != "" {
		set["thumbnailUrl"] = thumbnailURL
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the asset does not exist or it already reached a terminal
		// state. Distinguish so callers can treat the latter as a no-op.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return countErr
		}
		if count == 0 {
			return repository.ErrNotFound
		}
	}
	return nil
}

// EnsureVideoAssetIndexes creates necessary indexes for the video_assets collection.
func EnsureVideoAssetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "remoteAssetId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "supplierId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Supports the pending-asset scan of the transcode poller
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "uploadedAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
