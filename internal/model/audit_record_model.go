package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditRecord is the durable trace of an override decision. Session state
// itself is never persisted; only the audit trail is.
type AuditRecord struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId     string         `gorm:"type:varchar(64);not null;index"`
	CaseId        string         `gorm:"type:varchar(32);not null;index"`
	EventType     string         `gorm:"type:varchar(40);not null"`
	Justification string         `gorm:"type:text"`
	AuditHeat     int            `gorm:"not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"default:now();not null;index"`
}

func (AuditRecord) TableName() string {
	return "audit_records"
}
