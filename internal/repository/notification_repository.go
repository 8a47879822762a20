package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 7 * 24 * time.Hour

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a new notification
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(NotificationTTL)

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		notif.ID = id
	}
	return nil
}

// GetUserNotifications returns the unexpired notifications for a user, newest first
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// MarkAsRead sets Read on one of the user's notifications. It reports false if the user owns no such notification.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return result.MatchedCount == 1, nil
}

// DeleteNotification deletes one of the user's notifications.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	return result.DeletedCount == 1, nil
}

// DeleteExpiredNotifications removes notifications past their expiry
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	filter := bson.M{"expires_at": bson.M{"$lte": time.Now()}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	logrus.Infof("Deleted %d expired notifications", result.DeletedCount)
	return result.DeletedCount, nil
}
