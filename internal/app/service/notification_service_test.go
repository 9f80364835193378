package service

import (
	"context"
	"testing"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupNotificationServiceTest(t *testing.T) (NotificationService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	notificationRepo := repository.NewNotificationRepository(testDB)
	return NewNotificationService(notificationRepo, nil), testDB
}

func TestNotificationService_Enqueue(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	notification, err := svc.Enqueue(context.Background(), EnqueueInput{
		UserID:  1,
		Type:    model.NotificationTypeVerificationDecided,
		Title:   "Verification approved",
		Message: "Your verification request was approved.",
	})
	require.NoError(t, err)
	assert.NotZero(t, notification.ID)
	assert.False(t, notification.IsRead)
}

func TestNotificationService_Enqueue_DedupKeyCollapsesRetries(t *testing.T) {
	svc, testDB := setupNotificationServiceTest(t)

	in := EnqueueInput{
		UserID:   1,
		Type:     model.NotificationTypeVerificationDecided,
		Title:    "Verification approved",
		Message:  "Your verification request was approved.",
		DedupKey: "verification:17:decided",
	}

	first, err := svc.Enqueue(context.Background(), in)
	require.NoError(t, err)

	second, err := svc.Enqueue(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	testDB.Model(&model.Notification{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestNotificationService_List_FilterAndCount(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	for _, key := range []string{"a", "b", "c"} {
		_, err := svc.Enqueue(context.Background(), EnqueueInput{
			UserID:   1,
			Type:     model.NotificationTypeSystem,
			Title:    "Notice",
			Message:  "message " + key,
			DedupKey: "system:" + key,
		})
		require.NoError(t, err)
	}
	// Another user's notification stays out of the feed
	_, err := svc.Enqueue(context.Background(), EnqueueInput{
		UserID:  2,
		Type:    model.NotificationTypeSystem,
		Title:   "Notice",
		Message: "not for user 1",
	})
	require.NoError(t, err)

	notifications, total, unreadCount, err := svc.List(1, nil, 1, 20)
	require.NoError(t, err)
	assert.Len(t, notifications, 3)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(3), unreadCount)
}

func TestNotificationService_ListUnread(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	first, err := svc.Enqueue(context.Background(), EnqueueInput{
		UserID:  1,
		Type:    model.NotificationTypeSystem,
		Title:   "Notice",
		Message: "first",
	})
	require.NoError(t, err)
	_, err = svc.Enqueue(context.Background(), EnqueueInput{
		UserID:  1,
		Type:    model.NotificationTypeSystem,
		Title:   "Notice",
		Message: "second",
	})
	require.NoError(t, err)

	_, err = svc.MarkAsRead(first.ID, 1)
	require.NoError(t, err)

	unread, err := svc.ListUnread(1)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "second", unread[0].Message)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	notification, err := svc.Enqueue(context.Background(), EnqueueInput{
		UserID:  1,
		Type:    model.NotificationTypeVerificationDecided,
		Title:   "Verification approved",
		Message: "Your verification request was approved.",
	})
	require.NoError(t, err)

	read, err := svc.MarkAsRead(notification.ID, 1)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	count, err := svc.GetUnreadCount(1)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Marking again returns the record unchanged
	again, err := svc.MarkAsRead(notification.ID, 1)
	require.NoError(t, err)
	assert.True(t, again.IsRead)
}

func TestNotificationService_MarkAsRead_OwnershipEnforced(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	notification, err := svc.Enqueue(context.Background(), EnqueueInput{
		UserID:  1,
		Type:    model.NotificationTypeSystem,
		Title:   "Notice",
		Message: "for user 1 only",
	})
	require.NoError(t, err)

	_, err = svc.MarkAsRead(notification.ID, 2)
	assert.ErrorIs(t, err, ErrNotificationForbidden)

	_, err = svc.MarkAsRead(9999, 1)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	for _, key := range []string{"a", "b"} {
		_, err := svc.Enqueue(context.Background(), EnqueueInput{
			UserID:   1,
			Type:     model.NotificationTypeSystem,
			Title:    "Notice",
			Message:  "message " + key,
			DedupKey: "system:" + key,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllAsRead(1))

	count, err := svc.GetUnreadCount(1)
	require.NoError(t, err)
	assert.Zero(t, count)
}
