package repository

import (
	"github.com/lexcase/lexcase-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditRepository is append-only by construction: no update or delete
// methods exist on this interface.
type AuditRepository interface {
	// Append inserts the entry. When a dedup key is set and a row with the
	// same key already exists, the existing row is returned unchanged and
	// created is false.
	Append(entry *model.AuditEntry) (*model.AuditEntry, bool, error)
	FindByDedupKey(key string) (*model.AuditEntry, error)
	ListByActor(actorID uint) ([]model.AuditEntry, error)
	ListAll(limit, offset int) ([]model.AuditEntry, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(entry *model.AuditEntry) (*model.AuditEntry, bool, error) {
	if entry.DedupKey == nil {
		if err := r.db.Create(entry).Error; err != nil {
			return nil, false, err
		}
		return entry, true, nil
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		existing, err := r.FindByDedupKey(*entry.DedupKey)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return entry, true, nil
}

func (r *auditRepository) FindByDedupKey(key string) (*model.AuditEntry, error) {
	var entry model.AuditEntry
	if err := r.db.Where("dedup_key = ?", key).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *auditRepository) ListByActor(actorID uint) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := r.db.
		Where("actor_id = ?", actorID).
		Order("occurred_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *auditRepository) ListAll(limit, offset int) ([]model.AuditEntry, int64, error) {
	var entries []model.AuditEntry
	var total int64

	query := r.db.Model(&model.AuditEntry{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("occurred_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
