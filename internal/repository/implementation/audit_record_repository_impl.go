package implementation

import (
	"context"

	"aegis-review-be/internal/model"
	"aegis-review-be/internal/repository"

	"gorm.io/gorm"
)

type AuditRecordRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditRecordRepository(db *gorm.DB) repository.AuditRecordRepository {
	return &AuditRecordRepositoryImpl{db: db}
}

func (r *AuditRecordRepositoryImpl) Create(ctx context.Context, record *model.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *AuditRecordRepositoryImpl) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]model.AuditRecord, int64, error) {
	return r.list(ctx, "session_id = ?", sessionID, limit, offset)
}

func (r *AuditRecordRepositoryImpl) ListByCase(ctx context.Context, caseID string, limit, offset int) ([]model.AuditRecord, int64, error) {
	return r.list(ctx, "case_id = ?", caseID, limit, offset)
}

func (r *AuditRecordRepositoryImpl) list(ctx context.Context, cond string, arg interface{}, limit, offset int) ([]model.AuditRecord, int64, error) {
	var records []model.AuditRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditRecord{}).Where(cond, arg)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error

	return records, total, err
}
