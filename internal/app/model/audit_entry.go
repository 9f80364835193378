package model

import (
	"time"
)

// 감사 로그 액션 태그
const (
	ActionVerificationApproved = "VERIFICATION_APPROVED"
	ActionVerificationRejected = "VERIFICATION_REJECTED"
	ActionDocumentAttached     = "DOCUMENT_ATTACHED"
	ActionCaseOpened           = "CASE_OPENED"
)

// AuditEntry 감사 로그 항목
// 추가 전용: 생성 이후 수정/삭제 경로가 존재하지 않는다
type AuditEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ActorID     uint      `gorm:"not null;index" json:"actor_id"`
	Action      string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Description string    `gorm:"type:text;not null" json:"description"`
	OccurredAt  time.Time `gorm:"not null;index" json:"occurred_at"`

	// DedupKey makes retried appends collapse into one row.
	// Nullable so hand-written entries without a key remain possible.
	DedupKey *string `gorm:"type:varchar(100);uniqueIndex" json:"-"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
