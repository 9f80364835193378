package model

import (
	"time"
)

// StorageBackendType 파일 저장소 백엔드 종류
type StorageBackendType string

const (
	StorageBackendS3    StorageBackendType = "s3"
	StorageBackendLocal StorageBackendType = "local"
)

// DocumentRecord 사건 문서 메타데이터 모델
// 생성 후 불변: 재업로드는 수정이 아니라 새 레코드를 만든다
type DocumentRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID uint  `gorm:"not null;index;uniqueIndex:idx_documents_case_storage_ref" json:"case_id"`
	Case   *Case `gorm:"foreignKey:CaseID" json:"-"`

	FileName    string             `gorm:"type:text;not null" json:"file_name"`
	StorageRef  string             `gorm:"type:text;not null;uniqueIndex:idx_documents_case_storage_ref" json:"storage_ref"` // opaque locator resolved by the backend
	ContentType string             `gorm:"type:varchar(100)" json:"content_type"`
	Size        int64              `gorm:"not null" json:"size"`
	Backend     StorageBackendType `gorm:"type:varchar(20);not null" json:"storage_backend"`

	UploadedBy uint      `gorm:"not null;index" json:"uploaded_by"`
	Uploader   *User     `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	UploadedAt time.Time `gorm:"not null;index" json:"uploaded_at"`
}

func (DocumentRecord) TableName() string {
	return "document_records"
}
