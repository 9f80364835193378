package repository

import (
	"github.com/lexcase/lexcase-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository 알림 저장소 인터페이스
type NotificationRepository interface {
	// CreateIdempotent inserts the notification unless its dedup key already
	// exists; the committed row is returned either way.
	CreateIdempotent(notification *model.Notification) (*model.Notification, bool, error)
	FindByID(id uint) (*model.Notification, error)
	FindByDedupKey(key string) (*model.Notification, error)
	List(userID uint, isRead *bool, limit, offset int) ([]model.Notification, int64, error)
	ListUnread(userID uint) ([]model.Notification, error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(id uint) error
	MarkAllAsRead(userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateIdempotent(notification *model.Notification) (*model.Notification, bool, error) {
	if notification.DedupKey == nil {
		if err := r.db.Create(notification).Error; err != nil {
			return nil, false, err
		}
		return notification, true, nil
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(notification)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		existing, err := r.FindByDedupKey(*notification.DedupKey)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return notification, true, nil
}

func (r *notificationRepository) FindByID(id uint) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByDedupKey(key string) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.Where("dedup_key = ?", key).First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) List(userID uint, isRead *bool, limit, offset int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	query := r.db.Model(&model.Notification{}).Where("user_id = ?", userID)

	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) ListUnread(userID uint) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(id uint) error {
	return r.db.Model(&model.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(userID uint) error {
	return r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
