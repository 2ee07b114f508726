package service

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"aegis-review-be/internal/model"
	"aegis-review-be/internal/pkg/logger"
	"aegis-review-be/internal/repository"
	"aegis-review-be/pkg/events"
	pktNats "aegis-review-be/pkg/nats"
)

// AuditService drains the durable audit stream into the audit_records table.
// It runs as a background worker; the request path only publishes.
type AuditService struct {
	repo       repository.AuditRecordRepository
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditService(repo repository.AuditRecordRepository, sub *pktNats.Subscriber, log logger.ILogger) *AuditService {
	return &AuditService{
		repo:       repo,
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the audit bus.
func (s *AuditService) Start() {
	err := s.subscriber.Subscribe("audit.>", "audit-record-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("AuditService", "Failed to start audit subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("AuditService", "Audit service started, listening to audit.>", nil)
}

func (s *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	// The subject carries the stream prefix; the record stores the bare code.
	typeCode := strings.ToUpper(strings.TrimPrefix(event.EventType(), "audit."))

	record := &model.AuditRecord{
		EventType: typeCode,
	}
	if v, ok := payload["session_id"].(string); ok {
		record.SessionId = v
	}
	if v, ok := payload["case_id"].(string); ok {
		record.CaseId = v
	}
	if v, ok := payload["justification"].(string); ok {
		record.Justification = v
	}
	if v, ok := payload["audit_heat"].(float64); ok {
		record.AuditHeat = int(v)
	}

	if data, err := json.Marshal(payload); err == nil {
		record.Payload = datatypes.JSON(data)
	}

	if record.SessionId == "" {
		s.logger.Warn("AuditService", "Event without session id skipped", map[string]interface{}{"type": typeCode})
		return nil
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("AuditService", "Failed to persist audit record", map[string]interface{}{
			"type":  typeCode,
			"error": err.Error(),
		})
		return err
	}

	return nil
}
