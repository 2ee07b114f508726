package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"aegis-review-be/internal/catalog"
	"aegis-review-be/internal/dto"
	"aegis-review-be/internal/pkg/logger"
	"aegis-review-be/internal/repository/memory"
	"aegis-review-be/pkg/events"
	"aegis-review-be/pkg/llm"
	"aegis-review-be/pkg/llm/groq"
	pktNats "aegis-review-be/pkg/nats"
	"aegis-review-be/pkg/prompt"
	"aegis-review-be/pkg/store"
	"aegis-review-be/pkg/textnorm"
)

type IChatService interface {
	// StreamChat resolves the prompt for one analyst turn and starts the
	// completion. The returned channel carries deltas as they arrive and is
	// closed after a terminal event.
	StreamChat(ctx context.Context, req *dto.ChatRequest) (<-chan llm.StreamEvent, error)
	// Chat is the blocking variant; it returns the normalized assistant reply.
	Chat(ctx context.Context, req *dto.ChatRequest) (string, error)
}

type chatService struct {
	repo     *memory.SessionRepository
	cat      *catalog.Catalog
	provider llm.Provider
	feed     IPublisherService
	audit    *pktNats.Publisher
	logger   logger.ILogger

	mu       sync.Mutex
	inFlight map[string]struct{} // sessions awaiting a response, keyed session/case
}

func NewChatService(
	repo *memory.SessionRepository,
	cat *catalog.Catalog,
	provider llm.Provider,
	feed IPublisherService,
	audit *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		repo:     repo,
		cat:      cat,
		provider: provider,
		feed:     feed,
		audit:    audit,
		logger:   log,
		inFlight: make(map[string]struct{}),
	}
}

// turn is everything resolved up front for one exchange.
type turn struct {
	caseID       string
	systemPrompt string
	history      []llm.Message
	message      string

	session *store.Session // nil for detached requests
	epoch   int64
}

func (cs *chatService) StreamChat(ctx context.Context, req *dto.ChatRequest) (<-chan llm.StreamEvent, error) {
	t, err := cs.prepare(req)
	if err != nil {
		return nil, err
	}

	// One outstanding turn per case is a per-session rule; detached
	// clients are independent of each other and are not gated.
	if req.SessionId != "" && !cs.beginTurn(req.SessionId, t.caseID) {
		return nil, ErrTurnInFlight
	}

	upstream, err := cs.provider.ChatStream(ctx, t.systemPrompt, t.history)
	if err != nil {
		cs.endTurn(req.SessionId, t.caseID)
		return nil, cs.mapProviderErr(err)
	}

	out := make(chan llm.StreamEvent)
	go cs.pump(ctx, req.SessionId, t, upstream, out)
	return out, nil
}

func (cs *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (string, error) {
	stream, err := cs.StreamChat(ctx, req)
	if err != nil {
		return "", err
	}
	reply, err := llm.Collect(stream)
	if err != nil {
		return "", err
	}
	return textnorm.Assistant(reply), nil
}

// prepare resolves case, session and metrics into a ready-to-send turn.
func (cs *chatService) prepare(req *dto.ChatRequest) (*turn, error) {
	c, ok := cs.cat.ByID(req.CaseId)
	if !ok {
		return nil, ErrUnknownCase
	}
	if !c.ChatAvailable() {
		return nil, ErrChatDisabled
	}

	message := strings.TrimSpace(req.Message)
	if message == "" && len(req.Messages) == 0 {
		return nil, ErrEmptyMessage
	}

	t := &turn{caseID: c.ID, message: message}

	var metrics prompt.Metrics
	if req.SessionId != "" {
		if message == "" {
			return nil, ErrEmptyMessage
		}
		session, ok := cs.repo.Get(req.SessionId)
		if !ok {
			return nil, ErrSessionNotFound
		}
		t.session = session
		t.epoch = session.Epoch()

		decisions, disagreements, heat := session.Snapshot()
		summary := store.BuildSummary(decisions, disagreements, heat)
		metrics = prompt.Metrics{
			ComplianceRate:    summary.ComplianceRate,
			OverrideCount:     summary.OverrideCount,
			DisagreementCount: summary.DisagreementCount,
			DecisionHistory:   store.DecisionHistoryText(decisions, cs.cat.IDs()),
		}

		for _, prior := range session.History(c.ID) {
			t.history = append(t.history, llm.Message{Role: prior.Role, Content: prior.Content})
		}
	} else {
		// Detached client: trust nothing, sanitize everything. A replayed
		// transcript becomes the history, with its last entry standing in
		// for the new analyst message when no message field was sent.
		metrics = prompt.SanitizeMetrics(
			req.ComplianceRate,
			req.OverrideCount,
			req.DisagreementCount,
			req.ChallengeCount,
			req.DecisionHistory,
		)
		for _, m := range req.Messages {
			t.history = append(t.history, llm.Message{Role: m.Role, Content: m.Content})
		}
		if t.message == "" {
			last := req.Messages[len(req.Messages)-1]
			t.message = strings.TrimSpace(last.Content)
			if t.message == "" {
				return nil, ErrEmptyMessage
			}
		}
	}

	systemPrompt, err := prompt.NewBuilder(prompt.Context{Case: c, Metrics: metrics}).Build()
	if err != nil {
		if errors.Is(err, prompt.ErrChatUnavailable) {
			return nil, ErrChatDisabled
		}
		return nil, err
	}
	t.systemPrompt = systemPrompt
	if message != "" {
		t.history = append(t.history, llm.Message{Role: store.RoleAnalyst, Content: message})
	}

	return t, nil
}

// pump forwards stream events to the caller while accumulating the reply.
// The exchange is persisted only once the stream finishes cleanly, so a
// failed completion leaves no half-written turns behind.
func (cs *chatService) pump(ctx context.Context, sessionID string, t *turn, upstream <-chan llm.StreamEvent, out chan<- llm.StreamEvent) {
	defer close(out)

	var reply []byte
	for ev := range upstream {
		if ev.Err != nil {
			cs.endTurn(sessionID, t.caseID)
			cs.logger.Error("ChatService", "stream failed", map[string]interface{}{
				"session_id": sessionID,
				"case_id":    t.caseID,
				"error":      ev.Err.Error(),
			})
			out <- ev
			return
		}
		if ev.Delta != "" {
			reply = append(reply, ev.Delta...)
		}
		if ev.Done {
			cs.complete(ctx, sessionID, t, string(reply))
			out <- ev
			return
		}
		out <- ev
	}

	// Upstream closed without a terminal event; treat as an error so the
	// turn slot is not leaked.
	cs.endTurn(sessionID, t.caseID)
	out <- llm.StreamEvent{Err: errors.New("stream ended without completion")}
}

func (cs *chatService) complete(ctx context.Context, sessionID string, t *turn, raw string) {
	// The slot stays held until the exchange is persisted, so the next
	// submission on this case sees the full history.
	defer cs.endTurn(sessionID, t.caseID)

	normalized := textnorm.Assistant(raw)
	if t.session == nil {
		return
	}

	now := time.Now()
	appended := t.session.AppendTurn(t.epoch, t.caseID, store.ChatTurn{
		Role:      store.RoleAnalyst,
		Content:   t.message,
		CreatedAt: now,
	})
	if !appended {
		// The session was reset mid-completion; the shift that asked for
		// this reply no longer exists.
		cs.logger.Info("ChatService", "dropped stale completion", map[string]interface{}{
			"session_id": sessionID,
			"case_id":    t.caseID,
		})
		return
	}
	t.session.AppendTurn(t.epoch, t.caseID, store.ChatTurn{
		Role:      store.RoleAssistant,
		Content:   normalized,
		CreatedAt: now,
	})

	cs.publishTurn(ctx, t, len(t.message), len(normalized))
}

func (cs *chatService) publishTurn(ctx context.Context, t *turn, analystChars, assistantChars int) {
	event := events.NewChatTurnEvent(t.session.ID(), t.caseID, analystChars, assistantChars)

	if cs.feed != nil {
		msg := dto.SessionFeedMessage{
			SessionId: t.session.ID(),
			EventType: event.EventType(),
			CaseId:    t.caseID,
			Line:      feedLine(event.EventType()),
			Summary:   *buildSummaryResponse(t.session, cs.cat),
			EmittedAt: time.Now(),
		}
		if data, err := json.Marshal(msg); err == nil {
			if err := cs.feed.Publish(ctx, data); err != nil {
				cs.logger.Warn("ChatService", "feed publish failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if cs.audit != nil {
		if err := cs.audit.Publish(ctx, event); err != nil {
			cs.logger.Warn("ChatService", "audit publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (cs *chatService) mapProviderErr(err error) error {
	if errors.Is(err, groq.ErrMissingAPIKey) {
		return ErrMissingLLMCreds
	}
	return err
}

func turnKey(sessionID, caseID string) string {
	return sessionID + "/" + caseID
}

func (cs *chatService) beginTurn(sessionID, caseID string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	key := turnKey(sessionID, caseID)
	if _, busy := cs.inFlight[key]; busy {
		return false
	}
	cs.inFlight[key] = struct{}{}
	return true
}

// endTurn frees the slot. Keys are removed rather than zeroed so the map
// stays bounded by concurrent turns, not by session lifetime.
func (cs *chatService) endTurn(sessionID, caseID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.inFlight, turnKey(sessionID, caseID))
}
