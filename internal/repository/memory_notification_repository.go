package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/Friends_Manager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications map[primitive.ObjectID]models.Notification
	now           func() time.Time
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{
		notifications: make(map[primitive.ObjectID]models.Notification),
		now:           time.Now,
	}
}

func (r *MemoryNotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = r.now()
	notif.ExpiresAt = notif.CreatedAt.Add(NotificationTTL)
	r.notifications[notif.ID] = *notif
	return nil
}

func (r *MemoryNotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	result := []models.Notification{}
	for _, n := range r.notifications {
		if n.UserID == userID && n.ExpiresAt.After(now) {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryNotificationRepository) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	r.notifications[id] = n
	return true, nil
}

func (r *MemoryNotificationRepository) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(r.notifications, id)
	return true, nil
}

func (r *MemoryNotificationRepository) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var deleted int64
	for id, n := range r.notifications {
		if !n.ExpiresAt.After(now) {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
