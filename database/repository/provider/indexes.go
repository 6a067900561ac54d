package providerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the provider collections.
func (repo *MongoProviderRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	providerIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_email"),
		},
	}
	if _, err := repo.providerColl.Indexes().CreateMany(ctx, providerIndexes); err != nil {
		return fmt.Errorf("failed to create provider indexes: %w", err)
	}

	blockedIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "block_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_block_id"),
		},
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("provider_date_idx"),
		},
	}
	if _, err := repo.blockedColl.Indexes().CreateMany(ctx, blockedIndexes); err != nil {
		return fmt.Errorf("failed to create blocked slot indexes: %w", err)
	}
	return nil
}
