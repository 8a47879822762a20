package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RateLimitRepository keeps fixed-window counters in the "rate_limits"
// collection, one document per key. The TTL index on expires_at lets the
// server drop stale windows on its own.
type RateLimitRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewRateLimitRepository(db *mongo.Database) *RateLimitRepository {
	return &RateLimitRepository{
		collection: db.Collection("rate_limits"),
		now:        time.Now,
	}
}

// Increment counts one attempt for key and reports whether it fits in the
// current window. A rejected attempt leaves the counter untouched.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()

	// The TTL monitor runs about once a minute, so expired windows are
	// cleared here before counting.
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}}); err != nil {
		return false, fmt.Errorf("failed to reset rate limit window: %w", err)
	}

	filter := bson.M{"_id": key, "count": bson.M{"$lt": limit}}
	update := bson.M{
		"$inc":         bson.M{"count": 1},
		"$setOnInsert": bson.M{"expires_at": now.Add(window)},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Err()
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// The upsert collided with an existing window: either it is full, or a
	// concurrent first attempt created it. Retry without upsert to tell apart.
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"count": 1}})
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if result.MatchedCount == 0 {
		logrus.WithField("key", key).Debug("Rate limit window exhausted")
		return false, nil
	}
	return true, nil
}
