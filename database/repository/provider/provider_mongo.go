package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookify/database"
	"bookify/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	providerColl *mongo.Collection
	blockedColl  *mongo.Collection
}

// NewMongoProviderRepo constructs a new instance of MongoProviderRepo.
func NewMongoProviderRepo() ProviderRepository {
	db := database.DB()
	return &MongoProviderRepo{
		providerColl: db.Collection("providers"),
		blockedColl:  db.Collection("blocked_slots"),
	}
}

func (repo *MongoProviderRepo) GetByID(ctx context.Context, providerID string) (*models.Provider, error) {
	var provider models.Provider
	filter := bson.M{"id": providerID}
	if err := repo.providerColl.FindOne(ctx, filter).Decode(&provider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "provider", ID: providerID}
		}
		return nil, fmt.Errorf("error fetching provider with id %s: %w", providerID, err)
	}
	return &provider, nil
}

func (repo *MongoProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	now := time.Now()
	provider.CreatedAt = now
	provider.UpdatedAt = now
	if _, err := repo.providerColl.InsertOne(ctx, provider); err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}
	return nil
}

func (repo *MongoProviderRepo) UpdateWindows(ctx context.Context, providerID string, windows []models.AvailabilityWindow) error {
	filter := bson.M{"id": providerID}
	update := bson.M{"$set": bson.M{
		"availability_windows": windows,
		"updated_at":           time.Now(),
	}}
	res, err := repo.providerColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating availability windows for provider %s: %w", providerID, err)
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "provider", ID: providerID}
	}
	return nil
}

func (repo *MongoProviderRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	cursor, err := repo.providerColl.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("error listing active providers: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding provider: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}

func (repo *MongoProviderRepo) GetBlockedSlots(ctx context.Context, providerID, date string) ([]models.BlockedSlot, error) {
	filter := bson.M{"provider_id": providerID, "date": date}
	cursor, err := repo.blockedColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching blocked slots: %w", err)
	}
	defer cursor.Close(ctx)

	var blocked []models.BlockedSlot
	if err := cursor.All(ctx, &blocked); err != nil {
		return nil, fmt.Errorf("error decoding blocked slots: %w", err)
	}
	return blocked, nil
}

func (repo *MongoProviderRepo) CreateBlockedSlot(ctx context.Context, blocked *models.BlockedSlot) error {
	blocked.CreatedAt = time.Now()
	if _, err := repo.blockedColl.InsertOne(ctx, blocked); err != nil {
		return fmt.Errorf("error creating blocked slot: %w", err)
	}
	return nil
}

func (repo *MongoProviderRepo) RemoveBlockedSlot(ctx context.Context, blockID string) error {
	filter := bson.M{"block_id": blockID}
	if _, err := repo.blockedColl.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("error removing blocked slot %s: %w", blockID, err)
	}
	return nil
}
