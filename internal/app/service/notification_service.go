package service

import (
	"context"
	"errors"
	"time"

	"github.com/lexcase/lexcase-backend/internal/app/model"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/websocket"
	"github.com/lexcase/lexcase-backend/pkg/logger"
	appredis "github.com/lexcase/lexcase-backend/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrNotificationForbidden = errors.New("notification belongs to another user")
)

// EnqueueInput describes one outbox message
type EnqueueInput struct {
	UserID  uint
	Type    model.NotificationType
	Title   string
	Message string
	// DedupKey collapses retried enqueues into a single row
	DedupKey string

	RelatedRequestID  *uint
	RelatedCaseID     *uint
	RelatedDocumentID *uint
}

// NotificationService 알림 서비스 인터페이스
type NotificationService interface {
	Enqueue(ctx context.Context, in EnqueueInput) (*model.Notification, error)
	List(userID uint, isRead *bool, page, pageSize int) ([]model.Notification, int64, int64, error)
	ListUnread(userID uint) ([]model.Notification, error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(notificationID, userID uint) (*model.Notification, error)
	MarkAllAsRead(userID uint) error
}

type notificationService struct {
	repo repository.NotificationRepository
	hub  *websocket.Hub
}

// NewNotificationService 알림 서비스 생성자
func NewNotificationService(repo repository.NotificationRepository, hub *websocket.Hub) NotificationService {
	return &notificationService{
		repo: repo,
		hub:  hub,
	}
}

// Enqueue creates an unread notification. Retried calls carrying the same
// dedup key return the originally committed row.
func (s *notificationService) Enqueue(ctx context.Context, in EnqueueInput) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:            in.UserID,
		Type:              in.Type,
		Title:             in.Title,
		Message:           in.Message,
		IsRead:            false,
		RelatedRequestID:  in.RelatedRequestID,
		RelatedCaseID:     in.RelatedCaseID,
		RelatedDocumentID: in.RelatedDocumentID,
	}
	if in.DedupKey != "" {
		key := in.DedupKey
		notification.DedupKey = &key

		// Fast path: a claimed key means some earlier dispatch already
		// committed (or is committing) this notification
		claimed, _ := appredis.ClaimIdempotencyKey(ctx, "notification:"+in.DedupKey, 24*time.Hour)
		if !claimed {
			existing, err := s.repo.FindByDedupKey(in.DedupKey)
			if err == nil {
				return existing, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			// claim was stale, fall through to the database insert
		}
	}

	committed, created, err := s.repo.CreateIdempotent(notification)
	if err != nil {
		if in.DedupKey != "" {
			// free the claim so a retry can run the insert again
			_ = appredis.ReleaseIdempotencyKey(ctx, "notification:"+in.DedupKey)
		}
		logger.Error("Failed to enqueue notification", err, map[string]interface{}{
			"user_id": in.UserID,
			"type":    in.Type,
		})
		return nil, err
	}

	if created {
		s.pushUnreadUpdate(committed)
	}

	return committed, nil
}

// pushUnreadUpdate pushes the new notification over websocket, best effort
func (s *notificationService) pushUnreadUpdate(notification *model.Notification) {
	if s.hub == nil {
		return
	}

	unreadCount, err := s.repo.GetUnreadCount(notification.UserID)
	if err != nil {
		logger.Warn("Failed to count unread notifications for push", map[string]interface{}{
			"user_id": notification.UserID,
			"error":   err.Error(),
		})
		return
	}

	wsMessage := map[string]interface{}{
		"type":         "new_notification",
		"unread_count": unreadCount,
		"notification": notification,
	}
	if err := s.hub.SendNotificationToUser(notification.UserID, wsMessage); err != nil {
		logger.Warn("Failed to push notification over websocket", map[string]interface{}{
			"user_id": notification.UserID,
			"error":   err.Error(),
		})
	}
}

func (s *notificationService) List(userID uint, isRead *bool, page, pageSize int) ([]model.Notification, int64, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize

	notifications, total, err := s.repo.List(userID, isRead, pageSize, offset)
	if err != nil {
		return nil, 0, 0, err
	}

	unreadCount, err := s.repo.GetUnreadCount(userID)
	if err != nil {
		return nil, 0, 0, err
	}

	return notifications, total, unreadCount, nil
}

func (s *notificationService) ListUnread(userID uint) ([]model.Notification, error) {
	return s.repo.ListUnread(userID)
}

func (s *notificationService) GetUnreadCount(userID uint) (int64, error) {
	return s.repo.GetUnreadCount(userID)
}

// MarkAsRead flips the read flag. Only the recipient may do this.
func (s *notificationService) MarkAsRead(notificationID, userID uint) (*model.Notification, error) {
	notification, err := s.repo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	if notification.UserID != userID {
		logger.Warn("Notification read attempt by non-owner", map[string]interface{}{
			"notification_id": notificationID,
			"user_id":         userID,
			"owner_id":        notification.UserID,
		})
		return nil, ErrNotificationForbidden
	}

	if notification.IsRead {
		return notification, nil
	}

	if err := s.repo.MarkAsRead(notificationID); err != nil {
		return nil, err
	}

	notification.IsRead = true
	return notification, nil
}

func (s *notificationService) MarkAllAsRead(userID uint) error {
	return s.repo.MarkAllAsRead(userID)
}
