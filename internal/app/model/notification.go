package model

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeVerificationDecided NotificationType = "verification_decided"
	NotificationTypeSystem              NotificationType = "system"
)

// Notification 사용자 알림 모델
// 읽음 처리만 가능하며 삭제는 소프트 삭제로 보존
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type    NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`
	Title   string           `gorm:"type:text;not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`

	// DedupKey makes retried enqueues collapse into one row
	DedupKey *string `gorm:"type:varchar(100);uniqueIndex" json:"-"`

	RelatedRequestID  *uint `gorm:"index" json:"related_request_id,omitempty"`
	RelatedCaseID     *uint `gorm:"index" json:"related_case_id,omitempty"`
	RelatedDocumentID *uint `gorm:"index" json:"related_document_id,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
