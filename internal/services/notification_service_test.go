package services

import (
	"context"
	"testing"

	"github.com/Dias221467/Friends_Manager/internal/models"
	"github.com/Dias221467/Friends_Manager/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingPusher struct {
	online map[primitive.ObjectID]bool
	pushed []models.Notification
}

func (p *recordingPusher) Push(userID primitive.ObjectID, notif *models.Notification) bool {
	if !p.online[userID] {
		return false
	}
	p.pushed = append(p.pushed, *notif)
	return true
}

func TestNotificationService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	pusher := &recordingPusher{online: map[primitive.ObjectID]bool{alice: true}}
	svc := NewNotificationService(repository.NewMemoryNotificationRepository(), pusher)

	require.NoError(t, svc.Notify(ctx, alice, models.NotificationFriendRequestReceived, "New friend request", "hi", &bob))
	require.NoError(t, svc.Notify(ctx, bob, models.NotificationFriendRequestAccepted, "Accepted", "yay", &alice))

	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, alice, pusher.pushed[0].UserID)
	assert.False(t, pusher.pushed[0].ID.IsZero())

	list, err := svc.GetUserNotifications(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	assert.Equal(t, &bob, list[0].TargetID)

	id := list[0].ID

	// bob cannot touch alice's notification
	assert.ErrorIs(t, svc.MarkNotificationAsRead(ctx, bob, id), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.DeleteNotification(ctx, bob, id), ErrNotificationNotFound)

	require.NoError(t, svc.MarkNotificationAsRead(ctx, alice, id))
	list, err = svc.GetUserNotifications(ctx, alice)
	require.NoError(t, err)
	assert.True(t, list[0].Read)

	require.NoError(t, svc.DeleteNotification(ctx, alice, id))
	assert.ErrorIs(t, svc.DeleteNotification(ctx, alice, id), ErrNotificationNotFound)

	require.NoError(t, svc.DeleteExpiredNotifications(ctx))
}

func TestNotificationService_NilPusher(t *testing.T) {
	svc := NewNotificationService(repository.NewMemoryNotificationRepository(), nil)

	assert.NoError(t, svc.Notify(context.Background(), primitive.NewObjectID(), models.NotificationFriendRequestReceived, "t", "m", nil))
}
