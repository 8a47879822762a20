package database

import (
	"context"
	"fmt"

	"github.com/Dias221467/Friends_Manager/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens a client against cfg.MongoURI and returns the configured database.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logrus.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client.Database(cfg.MongoDB), nil
}

// Indexes lists the indexes each collection needs. The unique pair on
// friends is what keeps concurrent duplicate requests from both inserting.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email_unique")},
			{Keys: bson.D{{Key: "first_name", Value: 1}}, Options: options.Index().SetName("users_first_name")},
			{Keys: bson.D{{Key: "last_name", Value: 1}}, Options: options.Index().SetName("users_last_name")},
		},
		"friends": {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "friend", Value: 1}}, Options: options.Index().SetUnique(true).SetName("friends_user_friend_unique")},
			{Keys: bson.D{{Key: "friend", Value: 1}, {Key: "pending", Value: 1}}, Options: options.Index().SetName("friends_friend_pending")},
		},
		"rate_limits": {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("rate_limits_ttl")},
		},
		"notifications": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("notifications_user_created")},
		},
	}
}

// EnsureIndexes creates the indexes returned by Indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range Indexes() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		logrus.WithField("collection", collection).Debug("Indexes ensured")
	}
	return nil
}
