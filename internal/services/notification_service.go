package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Friends_Manager/internal/apperrors"
	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotificationNotFound is returned when the caller owns no notification with the given id.
var ErrNotificationNotFound = &apperrors.Error{
	Kind:    apperrors.KindNotFound,
	Code:    "notification_not_found",
	Message: "Notification does not exist.",
}

// NotificationStore persists notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) (bool, error)
	DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) (bool, error)
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

// Pusher delivers a stored notification to a live connection of its owner.
type Pusher interface {
	Push(userID primitive.ObjectID, notif *models.Notification) bool
}

type NotificationService struct {
	repo   NotificationStore
	pusher Pusher
}

// NewNotificationService creates a NotificationService. pusher may be nil.
func NewNotificationService(repo NotificationStore, pusher Pusher) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
	}
}

// Notify stores a notification for userID and pushes it if the user is connected.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}
	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		return err
	}

	if s.pusher != nil && s.pusher.Push(userID, notif) {
		logrus.WithFields(logrus.Fields{
			"user_id": userID.Hex(),
			"type":    notifType,
		}).Debug("Notification pushed")
	}
	return nil
}

// GetUserNotifications returns the user's unexpired notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead marks one of the user's notifications as read.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID, notifID primitive.ObjectID) error {
	ok, err := s.repo.MarkAsRead(ctx, userID, notifID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteNotification deletes one of the user's notifications.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notifID primitive.ObjectID) error {
	ok, err := s.repo.DeleteNotification(ctx, userID, notifID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteExpiredNotifications is run by the scheduler.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	n, err := s.repo.DeleteExpiredNotifications(ctx)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	logrus.WithField("deleted", n).Debug("Expired notifications cleaned up")
	return nil
}
