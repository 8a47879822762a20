package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRepository stores directed friend edges in the "friends" collection.
// The unique (user, friend) index is created by database.EnsureIndexes.
type FriendRepository struct {
	collection *mongo.Collection
}

func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection("friends"),
	}
}

// FindEdge returns the edge requester -> target, or nil when there is none.
func (r *FriendRepository) FindEdge(ctx context.Context, requester, target primitive.ObjectID) (*models.FriendEdge, error) {
	var edge models.FriendEdge
	err := r.collection.FindOne(ctx, bson.M{"user": requester, "friend": target}).Decode(&edge)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find friend edge: %w", err)
	}
	return &edge, nil
}

// InsertEdge stores a new edge. A unique index violation means the pair
// already exists and is reported as apperrors.ErrDuplicateRequest.
func (r *FriendRepository) InsertEdge(ctx context.Context, edge *models.FriendEdge) (*models.FriendEdge, error) {
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, edge)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateRequest
		}
		logrus.WithError(err).Error("Failed to insert friend edge")
		return nil, fmt.Errorf("failed to insert friend edge: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	edge.ID = insertedID

	logrus.WithFields(logrus.Fields{
		"requester": edge.RequesterID.Hex(),
		"target":    edge.TargetID.Hex(),
	}).Info("Friend edge inserted")
	return edge, nil
}

// AcceptEdge flips a pending edge to accepted. It reports false when no
// pending edge requester -> target matched, so two concurrent accepts
// cannot both succeed.
func (r *FriendRepository) AcceptEdge(ctx context.Context, requester, target primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user": requester, "friend": target, "pending": true},
		bson.M{"$set": bson.M{"pending": false}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to accept friend edge: %w", err)
	}
	return result.MatchedCount == 1, nil
}

// DeletePendingEdge removes requester -> target only while it is still pending.
func (r *FriendRepository) DeletePendingEdge(ctx context.Context, requester, target primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user": requester, "friend": target, "pending": true})
	if err != nil {
		return false, fmt.Errorf("failed to delete friend edge: %w", err)
	}
	return result.DeletedCount == 1, nil
}

func (r *FriendRepository) ListEdgesByRequester(ctx context.Context, requester primitive.ObjectID, pending bool) ([]models.FriendEdge, error) {
	return r.list(ctx, bson.M{"user": requester, "pending": pending})
}

func (r *FriendRepository) ListEdgesByTarget(ctx context.Context, target primitive.ObjectID, pending bool) ([]models.FriendEdge, error) {
	return r.list(ctx, bson.M{"friend": target, "pending": pending})
}

func (r *FriendRepository) list(ctx context.Context, filter bson.M) ([]models.FriendEdge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend edges: %w", err)
	}
	defer cursor.Close(ctx)

	edges := []models.FriendEdge{}
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, fmt.Errorf("failed to decode friend edges: %w", err)
	}
	return edges, nil
}
