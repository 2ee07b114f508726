package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"aegis-review-be/internal/catalog"
	"aegis-review-be/internal/dto"
	"aegis-review-be/internal/pkg/logger"
	"aegis-review-be/internal/repository/memory"
	"aegis-review-be/pkg/events"
	pktNats "aegis-review-be/pkg/nats"
	"aegis-review-be/pkg/store"
)

// RequiredEngagementTurns is how many analyst chat turns a logged
// disagreement demands before the case can be decided.
const RequiredEngagementTurns = 3

type ISessionService interface {
	Create(ctx context.Context) (*dto.CreateSessionResponse, error)
	Approve(ctx context.Context, req *dto.ApproveRequest) (*dto.ApproveResponse, error)
	Disagree(ctx context.Context, req *dto.DisagreeRequest) (*dto.SessionSummaryResponse, error)
	Override(ctx context.Context, req *dto.OverrideRequest) (*dto.SessionSummaryResponse, error)
	Advance(ctx context.Context, req *dto.AdvanceCaseRequest) (*dto.AdvanceCaseResponse, error)
	SetCase(ctx context.Context, req *dto.SetCaseRequest) (*dto.SessionSummaryResponse, error)
	Reset(ctx context.Context, req *dto.ResetSessionRequest) (*dto.SessionSummaryResponse, error)
	Summary(ctx context.Context, sessionID string) (*dto.SessionSummaryResponse, error)
	History(ctx context.Context, sessionID, caseID string) (*dto.ChatHistoryResponse, error)
	Debrief(ctx context.Context, sessionID, caseID string) (*dto.CaseDebriefResponse, error)
}

type sessionService struct {
	repo   *memory.SessionRepository
	cat    *catalog.Catalog
	feed   IPublisherService
	audit  *pktNats.Publisher
	logger logger.ILogger
}

func NewSessionService(
	repo *memory.SessionRepository,
	cat *catalog.Catalog,
	feed IPublisherService,
	audit *pktNats.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		repo:   repo,
		cat:    cat,
		feed:   feed,
		audit:  audit,
		logger: log,
	}
}

func (s *sessionService) Create(ctx context.Context) (*dto.CreateSessionResponse, error) {
	session := store.NewSession(uuid.NewString())
	s.repo.Save(session)

	s.logger.Info("SessionService", "session created", map[string]interface{}{"session_id": session.ID()})
	return &dto.CreateSessionResponse{SessionId: session.ID()}, nil
}

func (s *sessionService) Approve(ctx context.Context, req *dto.ApproveRequest) (*dto.ApproveResponse, error) {
	session, c, err := s.resolve(req.SessionId, req.CaseId)
	if err != nil {
		return nil, err
	}
	if s.gateLocked(session, c) {
		return nil, ErrGateLocked
	}

	if !session.ToggleApprove(c.ID) {
		// An override is already on file; approving is a no-op.
		return &dto.ApproveResponse{Approved: false}, nil
	}

	_, approved := session.Decision(c.ID)
	eventType := events.TypeDecisionApproved
	if !approved {
		eventType = events.TypeDecisionCleared
	}
	s.emit(ctx, session, eventType, c.ID, nil)

	return &dto.ApproveResponse{Approved: approved}, nil
}

func (s *sessionService) Disagree(ctx context.Context, req *dto.DisagreeRequest) (*dto.SessionSummaryResponse, error) {
	session, c, err := s.resolve(req.SessionId, req.CaseId)
	if err != nil {
		return nil, err
	}

	session.MarkDisagreement(c.ID)
	s.emit(ctx, session, events.TypeDisagreementLogged, c.ID, nil)

	return s.summaryResponse(session), nil
}

func (s *sessionService) Override(ctx context.Context, req *dto.OverrideRequest) (*dto.SessionSummaryResponse, error) {
	session, c, err := s.resolve(req.SessionId, req.CaseId)
	if err != nil {
		return nil, err
	}
	if s.gateLocked(session, c) {
		return nil, ErrGateLocked
	}

	session.SubmitOverride(c.ID, req.Justification)
	s.emitEvent(ctx, session, events.NewOverrideEvent(session.ID(), c.ID, req.Justification, session.AuditHeat()))

	return s.summaryResponse(session), nil
}

func (s *sessionService) Advance(ctx context.Context, req *dto.AdvanceCaseRequest) (*dto.AdvanceCaseResponse, error) {
	session, err := s.getSession(req.SessionId)
	if err != nil {
		return nil, err
	}

	advanced := session.AdvanceCase(s.cat.IDs())
	current, _ := s.cat.At(session.CaseIndex())

	if advanced {
		s.emit(ctx, session, events.TypeCaseAdvanced, current.ID, map[string]interface{}{
			"case_index": session.CaseIndex(),
		})
	}

	return &dto.AdvanceCaseResponse{
		Advanced:  advanced,
		CaseIndex: session.CaseIndex(),
		CaseId:    current.ID,
	}, nil
}

func (s *sessionService) SetCase(ctx context.Context, req *dto.SetCaseRequest) (*dto.SessionSummaryResponse, error) {
	session, err := s.getSession(req.SessionId)
	if err != nil {
		return nil, err
	}

	session.SetCaseIndex(req.Index, s.cat.Len())
	return s.summaryResponse(session), nil
}

func (s *sessionService) Reset(ctx context.Context, req *dto.ResetSessionRequest) (*dto.SessionSummaryResponse, error) {
	session, err := s.getSession(req.SessionId)
	if err != nil {
		return nil, err
	}

	session.Reset()
	s.emit(ctx, session, events.TypeSessionReset, "", nil)

	return s.summaryResponse(session), nil
}

func (s *sessionService) Summary(ctx context.Context, sessionID string) (*dto.SessionSummaryResponse, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.summaryResponse(session), nil
}

func (s *sessionService) History(ctx context.Context, sessionID, caseID string) (*dto.ChatHistoryResponse, error) {
	session, c, err := s.resolve(sessionID, caseID)
	if err != nil {
		return nil, err
	}

	turns := session.History(c.ID)
	out := make([]dto.ChatTurnDTO, 0, len(turns))
	for _, t := range turns {
		out = append(out, dto.ChatTurnDTO{Role: t.Role, Content: t.Content, CreatedAt: t.CreatedAt})
	}

	return &dto.ChatHistoryResponse{SessionId: session.ID(), CaseId: c.ID, Turns: out}, nil
}

func (s *sessionService) Debrief(ctx context.Context, sessionID, caseID string) (*dto.CaseDebriefResponse, error) {
	session, c, err := s.resolve(sessionID, caseID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CaseDebriefResponse{
		Id:              c.ID,
		ApproveOutcome:  c.Outcomes.Approve,
		OverrideOutcome: c.Outcomes.Override,
		TruthNote:       c.TruthNote,
	}
	if d, ok := session.Decision(c.ID); ok {
		resp.Decision = store.PrettyDecision(d.Kind)
	}
	return resp, nil
}

func (s *sessionService) getSession(sessionID string) (*store.Session, error) {
	session, ok := s.repo.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) resolve(sessionID, caseID string) (*store.Session, *catalog.Case, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	c, ok := s.cat.ByID(caseID)
	if !ok {
		return nil, nil, ErrUnknownCase
	}
	return session, c, nil
}

// gateLocked reports whether an undecided disagreement still blocks decisions
// on the case. Cases without chat cannot satisfy the engagement requirement,
// so the gate never applies to them.
func (s *sessionService) gateLocked(session *store.Session, c *catalog.Case) bool {
	if !c.ChatAvailable() {
		return false
	}
	return session.DisagreementActive(c.ID) && session.AnalystTurnCount(c.ID) < RequiredEngagementTurns
}

func (s *sessionService) summaryResponse(session *store.Session) *dto.SessionSummaryResponse {
	return buildSummaryResponse(session, s.cat)
}

func buildSummaryResponse(session *store.Session, cat *catalog.Catalog) *dto.SessionSummaryResponse {
	decisions, disagreements, heat := session.Snapshot()
	summary := store.BuildSummary(decisions, disagreements, heat)

	caseID := ""
	chatAvailable := false
	if c, ok := cat.At(session.CaseIndex()); ok {
		caseID = c.ID
		chatAvailable = c.ChatAvailable()
	}

	decided := make([]dto.DecisionDTO, 0, len(decisions))
	for _, id := range cat.IDs() {
		d, ok := decisions[id]
		if !ok {
			continue
		}
		decided = append(decided, dto.DecisionDTO{
			CaseId:        id,
			Kind:          string(d.Kind),
			Justification: d.Justification,
		})
	}

	locked := chatAvailable &&
		session.DisagreementActive(caseID) &&
		session.AnalystTurnCount(caseID) < RequiredEngagementTurns

	return &dto.SessionSummaryResponse{
		SessionId:         session.ID(),
		CaseIndex:         session.CaseIndex(),
		CaseId:            caseID,
		AuditHeat:         summary.AuditHeat,
		AuditHeatChip:     store.AuditHeatChip(summary.AuditHeat),
		ComplianceRate:    float64(summary.ComplianceRate),
		OverrideRate:      float64(summary.OverrideRate),
		OverrideCount:     summary.OverrideCount,
		DisagreementCount: summary.DisagreementCount,
		DecisionCount:     summary.TotalDecided,
		DecisionHistory:   store.DecisionHistoryText(decisions, cat.IDs()),
		Decisions:         decided,
		ChatLocked:        locked,
		AnalystTurnsSince: session.AnalystTurnCount(caseID),
	}
}

// emit publishes one mutation both to the in-process feed (websocket fan-out)
// and to the durable audit stream. Neither channel is allowed to fail the
// calling request.
func (s *sessionService) emit(ctx context.Context, session *store.Session, eventType, caseID string, extra map[string]interface{}) {
	s.emitEvent(ctx, session, events.NewDecisionEvent(eventType, session.ID(), caseID, extra))
}

func (s *sessionService) emitEvent(ctx context.Context, session *store.Session, event events.Event) {
	payload := event.Payload()
	caseID, _ := payload["case_id"].(string)

	if s.feed != nil {
		msg := dto.SessionFeedMessage{
			SessionId: session.ID(),
			EventType: event.EventType(),
			CaseId:    caseID,
			Line:      feedLine(event.EventType()),
			Summary:   *s.summaryResponse(session),
			EmittedAt: time.Now(),
		}
		if data, err := json.Marshal(msg); err == nil {
			if err := s.feed.Publish(ctx, data); err != nil {
				s.logger.Warn("SessionService", "feed publish failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if s.audit != nil {
		if err := s.audit.Publish(ctx, event); err != nil {
			s.logger.Warn("SessionService", "audit publish failed", map[string]interface{}{
				"event_type": event.EventType(),
				"error":      err.Error(),
			})
		}
	}
}

// feedLine is the one-line ticker text shown on the shift feed for an event.
func feedLine(eventType string) string {
	switch eventType {
	case events.TypeDecisionApproved:
		return "Decision logged // recommendation accepted"
	case events.TypeDecisionCleared:
		return "Decision cleared // case reopened"
	case events.TypeDisagreementLogged:
		return "Disagreement filed // engagement required"
	case events.TypeOverrideLogged:
		return "Override logged // audit exposure increased"
	case events.TypeCaseAdvanced:
		return "Case advanced // queue position updated"
	case events.TypeSessionReset:
		return "Session reset // shift restarted"
	case events.TypeChatTurnCompleted:
		return "Consultation logged // transcript appended"
	}
	return ""
}
