package repository

import (
	"context"

	"aegis-review-be/internal/model"
)

type AuditRecordRepository interface {
	Create(ctx context.Context, record *model.AuditRecord) error
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]model.AuditRecord, int64, error)
	ListByCase(ctx context.Context, caseID string, limit, offset int) ([]model.AuditRecord, int64, error)
}
